// Package search turns free-text marketplace queries into structured filters
// and applies them to listing snapshots.
package search

import (
	"context"
	"strings"
)

type SortOrder string

const (
	SortRecent    SortOrder = "recent"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortRecent, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// ParseSortOrder maps s onto a known order, defaulting to SortRecent.
func ParseSortOrder(s string) SortOrder {
	o := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	if o.Valid() {
		return o
	}
	return SortRecent
}

// Filters is the structured form of a search. Nil pointers are unconstrained.
type Filters struct {
	Keywords []string  `json:"keywords"`
	Category *string   `json:"category"`
	MinPrice *float64  `json:"minPrice"`
	MaxPrice *float64  `json:"maxPrice"`
	SortBy   SortOrder `json:"sortBy"`
}

// NewFilters returns unconstrained filters sorted by recency.
func NewFilters() Filters {
	return Filters{Keywords: []string{}, SortBy: SortRecent}
}

func (f Filters) HasCategory() bool { return f.Category != nil }

// CategoryOrEmpty returns the category or "" when unconstrained.
func (f Filters) CategoryOrEmpty() string {
	if f.Category == nil {
		return ""
	}
	return *f.Category
}

// Clone returns a deep copy so cached values cannot be mutated by callers.
func (f Filters) Clone() Filters {
	out := Filters{
		Keywords: append(make([]string, 0, len(f.Keywords)), f.Keywords...),
		SortBy:   f.SortBy,
	}
	if f.Category != nil {
		c := *f.Category
		out.Category = &c
	}
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	return out
}

// Parser converts a free-text query into Filters.
type Parser interface {
	Parse(ctx context.Context, query string) (Filters, error)
}

func ptr[T any](v T) *T { return &v }
