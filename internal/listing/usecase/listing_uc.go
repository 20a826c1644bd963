package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.uber.org/zap"
)

const (
	defaultBrowseLimit = 50
	maxBrowseLimit     = 200
)

type ListingUsecase struct {
	repo      domain.ListingRepository
	cache     domain.Cache
	publisher domain.EventPublisher
	notifier  domain.Notifier
	sellers   domain.SellerDirectory
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
	now       func() time.Time
}

// Dependencies other than repo and logger are optional and may be nil.
type Deps struct {
	Cache     domain.Cache
	Publisher domain.EventPublisher
	Notifier  domain.Notifier
	Sellers   domain.SellerDirectory
	Metrics   *metrics.MetricsManager
}

func NewListingUsecase(repo domain.ListingRepository, log *logger.Logger, deps Deps) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		sellers:   deps.Sellers,
		metrics:   deps.Metrics,
		logger:    log.Named("listing_usecase"),
		now:       time.Now,
	}
}

func listingCacheKey(id string) string {
	return "listing:" + id
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Location    string
	PhotoURL    string
}

// CreateListing files a new listing for the actor. It starts pending moderation.
func (uc *ListingUsecase) CreateListing(ctx context.Context, actor domain.Actor, in CreateListingInput) (*domain.Listing, error) {
	category := normalizeCategory(in.Category)
	if category == "" {
		category = domain.CategoryNone
	}
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}
	if in.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	now := uc.now().UTC()
	listing := &domain.Listing{
		SellerID:    actor.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    category,
		Location:    strings.TrimSpace(in.Location),
		PhotoURL:    in.PhotoURL,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing", zap.String("seller_id", actor.UserID), zap.Error(err))
		return nil, fmt.Errorf("ListingUsecase.CreateListing: %w", err)
	}
	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("seller_id", actor.UserID))

	if uc.publisher != nil {
		if err := uc.publisher.PublishListingCreated(ctx, listing); err != nil {
			uc.logger.Warn("Failed to publish listing created event", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}
	return listing, nil
}

// GetListing reads through the cache when one is configured.
func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	key := listingCacheKey(id)
	if uc.cache != nil {
		data, err := uc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var cached domain.Listing
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return &cached, nil
			}
			uc.logger.Warn("Dropping undecodable cached listing", zap.String("key", key))
			uc.evict(ctx, id)
		case !errors.Is(err, domain.ErrCacheMiss):
			uc.logger.Warn("Listing cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("ListingUsecase.GetListing: %w", err)
	}

	if uc.cache != nil {
		if data, err := json.Marshal(listing); err == nil {
			if err := uc.cache.Set(ctx, key, data); err != nil {
				uc.logger.Warn("Listing cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return listing, nil
}

type BrowseInput struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	SellerID string
	Status   domain.ListingStatus
	Limit    int
	Offset   int
}

// Browse lists listings newest first. The public catalogue only shows approved
// listings; a seller's own page shows every state.
func (uc *ListingUsecase) Browse(ctx context.Context, in BrowseInput) ([]*domain.Listing, error) {
	status := domain.StatusApproved
	if in.SellerID != "" {
		status = ""
	}
	return uc.list(ctx, in, status)
}

// AdminList lists listings in any state, optionally filtered by in.Status.
func (uc *ListingUsecase) AdminList(ctx context.Context, in BrowseInput) ([]*domain.Listing, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return uc.list(ctx, in, in.Status)
}

func (uc *ListingUsecase) list(ctx context.Context, in BrowseInput, status domain.ListingStatus) ([]*domain.Listing, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	limit = min(limit, maxBrowseLimit)

	listings, err := uc.repo.FindByFilter(ctx, domain.Filter{
		SellerID:    in.SellerID,
		Status:      status,
		Category:    normalizeCategory(in.Category),
		MinPrice:    in.MinPrice,
		MaxPrice:    in.MaxPrice,
		Query:       strings.TrimSpace(in.Query),
		NewestFirst: true,
		Limit:       limit,
		Offset:      max(in.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("ListingUsecase.list: %w", err)
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}
	return listings, nil
}

// UpdateListingInput carries a partial update; nil fields are left untouched.
type UpdateListingInput struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Location    *string
	PhotoURL    *string
}

func (uc *ListingUsecase) UpdateListing(ctx context.Context, actor domain.Actor, id string, in UpdateListingInput) (*domain.Listing, error) {
	listing, err := uc.loadForChange(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		listing.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		listing.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		listing.Price = *in.Price
	}
	if in.Category != nil {
		c := normalizeCategory(*in.Category)
		if !domain.ValidCategory(c) {
			return nil, domain.ErrInvalidCategory
		}
		listing.Category = c
	}
	if in.Location != nil {
		listing.Location = strings.TrimSpace(*in.Location)
	}
	if in.PhotoURL != nil {
		listing.PhotoURL = *in.PhotoURL
	}
	return uc.save(ctx, listing)
}

func (uc *ListingUsecase) MarkSold(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	listing, err := uc.loadForChange(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	listing.IsSold = true
	return uc.save(ctx, listing)
}

func (uc *ListingUsecase) DeleteListing(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := uc.loadForChange(ctx, actor, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("ListingUsecase.DeleteListing: %w", err)
	}
	uc.evict(ctx, id)
	uc.logger.Info("Listing deleted", zap.String("listing_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

type ModerationInput struct {
	Status *domain.ListingStatus
	IsSold *bool
}

// Moderate applies an administrator decision and tells the seller about
// approvals and rejections. Notification problems are logged only.
func (uc *ListingUsecase) Moderate(ctx context.Context, id string, in ModerationInput) (*domain.Listing, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	listing, err := uc.loadForChange(ctx, domain.Actor{IsAdmin: true}, id)
	if err != nil {
		return nil, err
	}

	statusChanged := in.Status != nil && *in.Status != listing.Status
	if in.Status != nil {
		listing.Status = *in.Status
	}
	if in.IsSold != nil {
		listing.IsSold = *in.IsSold
	}
	listing, err = uc.save(ctx, listing)
	if err != nil {
		return nil, err
	}
	if !statusChanged {
		return listing, nil
	}

	if uc.metrics != nil {
		uc.metrics.ListingsModeratedTotal.WithLabelValues(string(listing.Status)).Inc()
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishListingModerated(ctx, listing); err != nil {
			uc.logger.Warn("Failed to publish listing moderated event", zap.String("listing_id", id), zap.Error(err))
		}
	}
	if listing.Status != domain.StatusPending {
		uc.notifySeller(ctx, listing)
	}
	return listing, nil
}

func (uc *ListingUsecase) Counts(ctx context.Context) (domain.Counts, error) {
	counts, err := uc.repo.Count(ctx)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("ListingUsecase.Counts: %w", err)
	}
	return counts, nil
}

func (uc *ListingUsecase) notifySeller(ctx context.Context, listing *domain.Listing) {
	if uc.notifier == nil || uc.sellers == nil {
		return
	}
	email, err := uc.sellers.SellerEmail(ctx, listing.SellerID)
	if err != nil || email == "" {
		uc.logger.Warn("No seller email for moderation notice", zap.String("seller_id", listing.SellerID), zap.Error(err))
		return
	}
	if err := uc.notifier.NotifyListingModerated(ctx, email, listing); err != nil {
		uc.logger.Warn("Failed to send moderation notice", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *ListingUsecase) loadForChange(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("ListingUsecase: find listing %s: %w", id, err)
	}
	if !actor.CanModify(listing) {
		uc.logger.Warn("Forbidden listing change",
			zap.String("listing_id", id),
			zap.String("owner_id", listing.SellerID),
			zap.String("actor_id", actor.UserID),
		)
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

func (uc *ListingUsecase) save(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	listing.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("ListingUsecase: update listing %s: %w", listing.ID, err)
	}
	uc.evict(ctx, listing.ID)
	return listing, nil
}

func (uc *ListingUsecase) evict(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, listingCacheKey(id)); err != nil {
		uc.logger.Warn("Listing cache eviction failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
