package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newInMemoryBroadcast(t *testing.T, opts ...BroadcastOption) (*BroadcastService, *Registry, *memMessages) {
	t.Helper()
	reg := NewRegistry(nil)
	msgs := &memMessages{}
	rooms := new(MockRoomStore)
	rooms.On("TouchLastMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	opts = append([]BroadcastOption{WithClock(clock)}, opts...)
	return NewBroadcastService(reg, msgs, rooms, logger.NewNop(), opts...), reg, msgs
}

func TestBroadcast_EveryoneInRoomReceivesAndHistoryRecords(t *testing.T) {
	svc, reg, msgs := newInMemoryBroadcast(t)
	ctx := context.Background()
	a, b := &recorder{name: "A"}, &recorder{name: "B"}
	outsider := &recorder{name: "C"}
	reg.Connect("r1", a)
	reg.Connect("r1", b)
	reg.Connect("r2", outsider)

	msg, err := svc.Broadcast(ctx, "r1", "A", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, fixedNow, msg.SentAt)

	want := []OutboundMessage{{RoomID: "r1", SenderID: "A", Content: "hi"}}
	assert.Equal(t, want, a.received(), "sender gets the echo")
	assert.Equal(t, want, b.received())
	assert.Empty(t, outsider.received())

	_, err = svc.Broadcast(ctx, "r1", "B", "hello back")
	require.NoError(t, err)

	history, err := msgs.ListByRoom(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "hello back", history[1].Content)
}

func TestBroadcast_DeliversInRegistrationOrder(t *testing.T) {
	svc, reg, _ := newInMemoryBroadcast(t)
	order := &deliveryLog{}
	for _, name := range []string{"first", "second", "third"} {
		reg.Connect("r1", &recorder{name: name, log: order})
	}

	_, err := svc.Broadcast(context.Background(), "r1", "u", "ping")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order.order)
}

func TestBroadcast_PersistFailureDeliversNothing(t *testing.T) {
	reg := NewRegistry(nil)
	msgs := new(MockMessageStore)
	rooms := new(MockRoomStore)
	events := new(MockEventPublisher)
	svc := NewBroadcastService(reg, msgs, rooms, logger.NewNop(), WithEventPublisher(events))

	a := &recorder{name: "A"}
	reg.Connect("r1", a)
	storeErr := errors.New("mongo: no reachable servers")
	msgs.On("Create", mock.Anything, mock.AnythingOfType("*chat.Message")).Return(storeErr).Once()

	msg, err := svc.Broadcast(context.Background(), "r1", "A", "hi")
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, a.received())
	rooms.AssertNotCalled(t, "TouchLastMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "PublishMessageSent", mock.Anything, mock.Anything)
	msgs.AssertExpectations(t)
}

func TestBroadcast_SideEffectFailuresDoNotStopDelivery(t *testing.T) {
	reg := NewRegistry(nil)
	msgs := &memMessages{}
	rooms := new(MockRoomStore)
	events := new(MockEventPublisher)
	svc := NewBroadcastService(reg, msgs, rooms, logger.NewNop(), WithEventPublisher(events), WithClock(clock))

	rooms.On("TouchLastMessage", mock.Anything, "r1", "deal?", fixedNow).Return(errors.New("write conflict")).Once()
	events.On("PublishMessageSent", mock.Anything, mock.MatchedBy(func(m *Message) bool {
		return m.ID != "" && m.Content == "deal?"
	})).Return(errors.New("nats: connection closed")).Once()

	a := &recorder{name: "A"}
	reg.Connect("r1", a)
	_, err := svc.Broadcast(context.Background(), "r1", "A", "deal?")
	require.NoError(t, err)
	assert.Len(t, a.received(), 1)
	rooms.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestBroadcast_FailingSubscriberIsDroppedOthersStillReceive(t *testing.T) {
	m := metrics.NewMetricsManager("test")
	svc, reg, _ := newInMemoryBroadcast(t, WithMetrics(m))
	a := &recorder{name: "A"}
	broken := &recorder{name: "broken", fail: errBrokenPipe}
	c := &recorder{name: "C"}
	reg.Connect("r1", a)
	reg.Connect("r1", broken)
	reg.Connect("r1", c)

	_, err := svc.Broadcast(context.Background(), "r1", "A", "still there?")
	require.NoError(t, err)

	assert.Len(t, a.received(), 1)
	assert.Len(t, c.received(), 1)
	assert.Equal(t, []Subscriber{a, c}, reg.Subscribers("r1"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatDeliveryFailuresTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatMessagesTotal))
}

func TestBroadcast_RejectsEmptyAndOversizedContent(t *testing.T) {
	svc, reg, msgs := newInMemoryBroadcast(t)
	a := &recorder{name: "A"}
	reg.Connect("r1", a)

	_, err := svc.Broadcast(context.Background(), "r1", "A", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	long := make([]rune, MaxMessageLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Broadcast(context.Background(), "r1", "A", string(long))
	assert.ErrorIs(t, err, ErrMessageTooLong)

	history, _ := msgs.ListByRoom(context.Background(), "r1")
	assert.Empty(t, history)
	assert.Empty(t, a.received())
}

func TestBroadcast_CensorsBannedWords(t *testing.T) {
	mod, err := NewModerator([]string{"scam"})
	require.NoError(t, err)
	svc, reg, msgs := newInMemoryBroadcast(t, WithModerator(mod))
	a := &recorder{name: "A"}
	reg.Connect("r1", a)

	_, err = svc.Broadcast(context.Background(), "r1", "A", "this is a $c4m")
	require.NoError(t, err)
	assert.Equal(t, "this is a ****", a.received()[0].Content)

	history, _ := msgs.ListByRoom(context.Background(), "r1")
	assert.Equal(t, "this is a ****", history[0].Content)
}

func TestBroadcast_EmptyRoomStillPersists(t *testing.T) {
	svc, _, msgs := newInMemoryBroadcast(t)
	_, err := svc.Broadcast(context.Background(), "quiet", "A", "anyone?")
	require.NoError(t, err)

	history, _ := msgs.ListByRoom(context.Background(), "quiet")
	assert.Len(t, history, 1)
}

func TestBroadcast_ConcurrentWithMembershipChanges(t *testing.T) {
	svc, reg, msgs := newInMemoryBroadcast(t)
	stable := &recorder{name: "stable"}
	reg.Connect("r1", stable)

	const senders = 20
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Broadcast(context.Background(), "r1", "A", "msg")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			s := &recorder{name: "churn"}
			reg.Connect("r1", s)
			reg.Disconnect("r1", s)
		}()
	}
	wg.Wait()

	assert.Len(t, stable.received(), senders)
	history, _ := msgs.ListByRoom(context.Background(), "r1")
	assert.Len(t, history, senders)
}
