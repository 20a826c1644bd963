package domain

import "context"

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindByFilter returns matches in insertion order (oldest first).
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, error)
	Count(ctx context.Context) (Counts, error)
}

// Storage persists listing photos and returns their public URL.
type Storage interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

// Cache holds serialized listings by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher announces listing lifecycle events.
type EventPublisher interface {
	PublishListingCreated(ctx context.Context, listing *Listing) error
	PublishListingModerated(ctx context.Context, listing *Listing) error
}

// Notifier tells sellers about moderation outcomes.
type Notifier interface {
	NotifyListingModerated(ctx context.Context, sellerEmail string, listing *Listing) error
}

// SellerDirectory resolves seller contact details.
type SellerDirectory interface {
	SellerEmail(ctx context.Context, sellerID string) (string, error)
}
