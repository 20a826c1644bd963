package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BroadcastService persists chat messages and fans them out to the room's
// live connections.
type BroadcastService struct {
	registry  *Registry
	messages  MessageStore
	rooms     RoomStore
	events    EventPublisher
	moderator *Moderator
	log       *logger.Logger
	metrics   *metrics.MetricsManager
	tracer    trace.Tracer
	now       func() time.Time
}

type BroadcastOption func(*BroadcastService)

func WithEventPublisher(p EventPublisher) BroadcastOption {
	return func(s *BroadcastService) { s.events = p }
}

func WithModerator(m *Moderator) BroadcastOption {
	return func(s *BroadcastService) { s.moderator = m }
}

func WithMetrics(m *metrics.MetricsManager) BroadcastOption {
	return func(s *BroadcastService) { s.metrics = m }
}

func WithClock(now func() time.Time) BroadcastOption {
	return func(s *BroadcastService) { s.now = now }
}

func NewBroadcastService(registry *Registry, messages MessageStore, rooms RoomStore, log *logger.Logger, opts ...BroadcastOption) *BroadcastService {
	s := &BroadcastService{
		registry: registry,
		messages: messages,
		rooms:    rooms,
		log:      log.Named("chat_broadcast"),
		tracer:   otel.Tracer("marketplace/chat"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Broadcast stores the message and then delivers it to everyone connected to
// the room at that moment, the sender included. If storing fails nothing is
// delivered. Delivery failures only affect the failing connection, which is
// dropped from the registry.
func (s *BroadcastService) Broadcast(ctx context.Context, roomID, senderID, content string) (*Message, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Broadcast", trace.WithAttributes(
		attribute.String("chat.room_id", roomID),
		attribute.String("chat.sender_id", senderID),
	))
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}
	content = s.moderator.Censor(content)

	msg := &Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
		SentAt:   s.now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.log.Error("Failed to persist chat message, not broadcasting",
			zap.String("room_id", roomID),
			zap.String("sender_id", senderID),
			zap.Error(err),
		)
		span.RecordError(err)
		return nil, fmt.Errorf("BroadcastService.Broadcast: persist message: %w", err)
	}

	if err := s.rooms.TouchLastMessage(ctx, roomID, msg.Content, msg.SentAt); err != nil {
		s.log.Warn("Failed to update chat room last message",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
	}

	if s.events != nil {
		if err := s.events.PublishMessageSent(ctx, msg); err != nil {
			s.log.Warn("Failed to publish chat message event",
				zap.String("room_id", roomID),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	delivered := s.deliver(ctx, msg)
	span.SetAttributes(attribute.Int("chat.delivered", delivered))
	if s.metrics != nil {
		s.metrics.ChatMessagesTotal.Inc()
	}
	return msg, nil
}

func (s *BroadcastService) deliver(ctx context.Context, msg *Message) int {
	out := OutboundMessage{RoomID: msg.RoomID, SenderID: msg.SenderID, Content: msg.Content}
	delivered := 0
	for _, sub := range s.registry.Subscribers(msg.RoomID) {
		if err := sub.Send(ctx, out); err != nil {
			s.log.Warn("Failed to deliver chat message, dropping connection",
				zap.String("room_id", msg.RoomID),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			s.registry.Disconnect(msg.RoomID, sub)
			if s.metrics != nil {
				s.metrics.ChatDeliveryFailuresTotal.Inc()
			}
			continue
		}
		delivered++
	}
	return delivered
}
