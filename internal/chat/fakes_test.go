package chat

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

// memMessages is an in-memory MessageStore keeping insertion order.
type memMessages struct {
	mu   sync.Mutex
	msgs []*Message
}

func (s *memMessages) Create(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = strconv.Itoa(len(s.msgs) + 1)
	cp := *msg
	s.msgs = append(s.msgs, &cp)
	return nil
}

func (s *memMessages) ListByRoom(_ context.Context, roomID string) ([]*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Message
	for _, m := range s.msgs {
		if m.RoomID == roomID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recorder is a Subscriber that stores what it receives, optionally failing.
type recorder struct {
	name string
	fail error
	log  *deliveryLog

	mu  sync.Mutex
	got []OutboundMessage
}

type deliveryLog struct {
	mu    sync.Mutex
	order []string
}

func (l *deliveryLog) add(name string) {
	l.mu.Lock()
	l.order = append(l.order, name)
	l.mu.Unlock()
}

func (r *recorder) Send(_ context.Context, msg OutboundMessage) error {
	if r.log != nil {
		r.log.add(r.name)
	}
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	r.got = append(r.got, msg)
	r.mu.Unlock()
	return nil
}

func (r *recorder) received() []OutboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OutboundMessage(nil), r.got...)
}

var errBrokenPipe = errors.New("write: broken pipe")

type MockMessageStore struct{ mock.Mock }

func (m *MockMessageStore) Create(ctx context.Context, msg *Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *MockMessageStore) ListByRoom(ctx context.Context, roomID string) ([]*Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Message), args.Error(1)
}

type MockRoomStore struct{ mock.Mock }

func (m *MockRoomStore) Create(ctx context.Context, room *ChatRoom) error {
	return m.Called(ctx, room).Error(0)
}
func (m *MockRoomStore) FindByID(ctx context.Context, id string) (*ChatRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatRoom), args.Error(1)
}
func (m *MockRoomStore) FindByParticipants(ctx context.Context, buyerID, sellerID, listingID string) (*ChatRoom, error) {
	args := m.Called(ctx, buyerID, sellerID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatRoom), args.Error(1)
}
func (m *MockRoomStore) ListByUser(ctx context.Context, userID string) ([]*ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatRoom), args.Error(1)
}
func (m *MockRoomStore) TouchLastMessage(ctx context.Context, roomID, content string, at time.Time) error {
	return m.Called(ctx, roomID, content, at).Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishMessageSent(ctx context.Context, msg *Message) error {
	return m.Called(ctx, msg).Error(0)
}

type MockListingLookup struct{ mock.Mock }

func (m *MockListingLookup) FindByID(ctx context.Context, id string) (*listingdomain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listingdomain.Listing), args.Error(1)
}
