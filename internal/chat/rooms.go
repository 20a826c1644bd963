package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ListingLookup resolves the listing a room is about.
type ListingLookup interface {
	FindByID(ctx context.Context, id string) (*listingdomain.Listing, error)
}

type RoomService struct {
	rooms    RoomStore
	messages MessageStore
	listings ListingLookup
	log      *logger.Logger
}

func NewRoomService(rooms RoomStore, messages MessageStore, listings ListingLookup, log *logger.Logger) *RoomService {
	return &RoomService{
		rooms:    rooms,
		messages: messages,
		listings: listings,
		log:      log.Named("chat_rooms"),
	}
}

// OpenRoom returns the buyer's room for the listing, creating it on first use.
func (s *RoomService) OpenRoom(ctx context.Context, buyerID, listingID string) (*ChatRoom, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listingdomain.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("RoomService.OpenRoom: find listing: %w", err)
	}
	if listing.SellerID == buyerID {
		return nil, ErrSelfChat
	}

	room, err := s.rooms.FindByParticipants(ctx, buyerID, listing.SellerID, listingID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, ErrRoomNotFound) {
		return nil, fmt.Errorf("RoomService.OpenRoom: find room: %w", err)
	}

	now := time.Now().UTC()
	room = &ChatRoom{
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		ListingID: listingID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, ErrRoomExists) {
			// Lost a concurrent create; the other writer's room is the one to use.
			return s.rooms.FindByParticipants(ctx, buyerID, listing.SellerID, listingID)
		}
		return nil, fmt.Errorf("RoomService.OpenRoom: create room: %w", err)
	}
	s.log.Info("Chat room opened",
		zap.String("room_id", room.ID),
		zap.String("listing_id", listingID),
		zap.String("buyer_id", buyerID),
	)
	return room, nil
}

// ListRooms returns the user's rooms, most recently active first.
func (s *RoomService) ListRooms(ctx context.Context, userID string) ([]*ChatRoom, error) {
	rooms, err := s.rooms.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("RoomService.ListRooms: %w", err)
	}
	return rooms, nil
}

// Authorize loads the room and checks that userID may take part in it.
func (s *RoomService) Authorize(ctx context.Context, roomID, userID string, isAdmin bool) (*ChatRoom, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !room.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return room, nil
}

// History returns the room's messages in the order they were sent.
func (s *RoomService) History(ctx context.Context, roomID, userID string, isAdmin bool) ([]*Message, error) {
	if _, err := s.Authorize(ctx, roomID, userID, isAdmin); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("RoomService.History: %w", err)
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}
