package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent    []published
	err     error
	drained bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{subject, data})
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("listing events", func(t *testing.T) {
		fc := &fakeConn{}
		p := &Publisher{nc: fc, logger: logger.NewNop()}
		l := &domain.Listing{ID: "l1", SellerID: "s1", Title: "Lamp", Status: domain.StatusApproved, UpdatedAt: at}

		require.NoError(t, p.PublishListingCreated(ctx, l))
		require.NoError(t, p.PublishListingModerated(ctx, l))
		require.Len(t, fc.sent, 2)
		assert.Equal(t, ListingCreatedSubject, fc.sent[0].subject)
		assert.Equal(t, ListingModeratedSubject, fc.sent[1].subject)

		var ev ListingEvent
		require.NoError(t, json.Unmarshal(fc.sent[1].data, &ev))
		assert.Equal(t, "l1", ev.ID)
		assert.Equal(t, domain.StatusApproved, ev.Status)
		assert.True(t, ev.OccurredAt.Equal(at))
	})

	t.Run("chat event omits content", func(t *testing.T) {
		fc := &fakeConn{}
		p := &Publisher{nc: fc, logger: logger.NewNop()}
		require.NoError(t, p.PublishMessageSent(ctx, &chat.Message{ID: "m1", RoomID: "r1", SenderID: "u1", Content: "secret", SentAt: at}))
		require.Len(t, fc.sent, 1)
		assert.Equal(t, ChatMessageSentSubject, fc.sent[0].subject)
		assert.NotContains(t, string(fc.sent[0].data), "secret")
	})

	t.Run("publish failure", func(t *testing.T) {
		p := &Publisher{nc: &fakeConn{err: errors.New("closed")}, logger: logger.NewNop()}
		assert.Error(t, p.PublishListingCreated(ctx, &domain.Listing{ID: "l1"}))
	})

	t.Run("close drains", func(t *testing.T) {
		fc := &fakeConn{}
		(&Publisher{nc: fc, logger: logger.NewNop()}).Close()
		assert.True(t, fc.drained)
	})
}
