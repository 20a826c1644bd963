package domain

import (
	"slices"
	"time"
)

type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

// Valid reports whether s is one of the moderation states.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Categories a listing may be filed under.
const (
	CategoryTextbooks  = "textbooks"
	CategoryGadgets    = "gadgets"
	CategoryEssentials = "essentials"
	CategoryFurniture  = "furniture"
	CategoryClothing   = "clothing"
	CategorySports     = "sports"
	CategoryNone       = "none"
)

var Categories = []string{
	CategoryTextbooks,
	CategoryGadgets,
	CategoryEssentials,
	CategoryFurniture,
	CategoryClothing,
	CategorySports,
	CategoryNone,
}

type Listing struct {
	ID          string        `json:"id"`
	SellerID    string        `json:"sellerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	Location    string        `json:"location,omitempty"`
	PhotoURL    string        `json:"photoUrl,omitempty"`
	Status      ListingStatus `json:"status"`
	IsSold      bool          `json:"isSold"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Visible reports whether the listing may be shown to buyers.
func (l *Listing) Visible() bool {
	return l.Status == StatusApproved
}

// Filter narrows a repository listing query. Zero values are unconstrained.
type Filter struct {
	SellerID string
	Status   ListingStatus
	Category string
	MinPrice *float64
	MaxPrice *float64
	// Query matches title or description case-insensitively.
	Query string
	// NewestFirst orders by creation time descending instead of insertion order.
	NewestFirst bool
	Limit       int
	Offset      int
}

// Actor is the authenticated caller of a listing operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// CanModify reports whether the actor owns l or is an administrator.
func (a Actor) CanModify(l *Listing) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == l.SellerID)
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Counts summarises listings by moderation state.
type Counts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Sold     int64 `json:"sold"`
}
