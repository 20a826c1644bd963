package chat

import (
	"context"
	"errors"
	"testing"

	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRoomService() (*RoomService, *MockRoomStore, *MockMessageStore, *MockListingLookup) {
	rooms := new(MockRoomStore)
	msgs := new(MockMessageStore)
	listings := new(MockListingLookup)
	return NewRoomService(rooms, msgs, listings, logger.NewNop()), rooms, msgs, listings
}

func TestRoomService_OpenRoom(t *testing.T) {
	ctx := context.Background()
	desk := &listingdomain.Listing{ID: "l1", SellerID: "seller"}

	t.Run("creates on first contact", func(t *testing.T) {
		svc, rooms, _, listings := newRoomService()
		listings.On("FindByID", ctx, "l1").Return(desk, nil)
		rooms.On("FindByParticipants", ctx, "buyer", "seller", "l1").Return(nil, ErrRoomNotFound).Once()
		rooms.On("Create", ctx, mock.MatchedBy(func(r *ChatRoom) bool {
			return r.BuyerID == "buyer" && r.SellerID == "seller" && r.ListingID == "l1"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*ChatRoom).ID = "room-1"
		}).Return(nil).Once()

		room, err := svc.OpenRoom(ctx, "buyer", "l1")
		require.NoError(t, err)
		assert.Equal(t, "room-1", room.ID)
		rooms.AssertExpectations(t)
	})

	t.Run("reuses existing room", func(t *testing.T) {
		svc, rooms, _, listings := newRoomService()
		existing := &ChatRoom{ID: "room-9", BuyerID: "buyer", SellerID: "seller", ListingID: "l1"}
		listings.On("FindByID", ctx, "l1").Return(desk, nil)
		rooms.On("FindByParticipants", ctx, "buyer", "seller", "l1").Return(existing, nil).Once()

		room, err := svc.OpenRoom(ctx, "buyer", "l1")
		require.NoError(t, err)
		assert.Same(t, existing, room)
		rooms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost create race returns winner", func(t *testing.T) {
		svc, rooms, _, listings := newRoomService()
		winner := &ChatRoom{ID: "room-2"}
		listings.On("FindByID", ctx, "l1").Return(desk, nil)
		rooms.On("FindByParticipants", ctx, "buyer", "seller", "l1").Return(nil, ErrRoomNotFound).Once()
		rooms.On("Create", ctx, mock.Anything).Return(ErrRoomExists).Once()
		rooms.On("FindByParticipants", ctx, "buyer", "seller", "l1").Return(winner, nil).Once()

		room, err := svc.OpenRoom(ctx, "buyer", "l1")
		require.NoError(t, err)
		assert.Equal(t, "room-2", room.ID)
	})

	t.Run("seller cannot chat with themselves", func(t *testing.T) {
		svc, _, _, listings := newRoomService()
		listings.On("FindByID", ctx, "l1").Return(desk, nil)

		_, err := svc.OpenRoom(ctx, "seller", "l1")
		assert.ErrorIs(t, err, ErrSelfChat)
	})

	t.Run("unknown listing", func(t *testing.T) {
		svc, _, _, listings := newRoomService()
		listings.On("FindByID", ctx, "missing").Return(nil, listingdomain.ErrListingNotFound)

		_, err := svc.OpenRoom(ctx, "buyer", "missing")
		assert.ErrorIs(t, err, ErrListingNotFound)
	})
}

func TestRoomService_History(t *testing.T) {
	ctx := context.Background()
	room := &ChatRoom{ID: "r1", BuyerID: "buyer", SellerID: "seller"}
	history := []*Message{{ID: "1", Content: "hi"}, {ID: "2", Content: "hello"}}

	t.Run("participant reads in order", func(t *testing.T) {
		svc, rooms, msgs, _ := newRoomService()
		rooms.On("FindByID", ctx, "r1").Return(room, nil)
		msgs.On("ListByRoom", ctx, "r1").Return(history, nil)

		got, err := svc.History(ctx, "r1", "seller", false)
		require.NoError(t, err)
		assert.Equal(t, history, got)
	})

	t.Run("outsider rejected", func(t *testing.T) {
		svc, rooms, msgs, _ := newRoomService()
		rooms.On("FindByID", ctx, "r1").Return(room, nil)

		_, err := svc.History(ctx, "r1", "stranger", false)
		assert.ErrorIs(t, err, ErrNotParticipant)
		msgs.AssertNotCalled(t, "ListByRoom", mock.Anything, mock.Anything)
	})

	t.Run("admin may read any room", func(t *testing.T) {
		svc, rooms, msgs, _ := newRoomService()
		rooms.On("FindByID", ctx, "r1").Return(room, nil)
		msgs.On("ListByRoom", ctx, "r1").Return(nil, nil)

		got, err := svc.History(ctx, "r1", "admin-1", true)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("missing room", func(t *testing.T) {
		svc, rooms, _, _ := newRoomService()
		rooms.On("FindByID", ctx, "nope").Return(nil, ErrRoomNotFound)

		_, err := svc.History(ctx, "nope", "buyer", false)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("store failure wrapped", func(t *testing.T) {
		svc, rooms, msgs, _ := newRoomService()
		storeErr := errors.New("cursor closed")
		rooms.On("FindByID", ctx, "r1").Return(room, nil)
		msgs.On("ListByRoom", ctx, "r1").Return(nil, storeErr)

		_, err := svc.History(ctx, "r1", "buyer", false)
		assert.ErrorIs(t, err, storeErr)
	})
}
