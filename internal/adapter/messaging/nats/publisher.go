package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	ListingCreatedSubject   = "listing.created"
	ListingModeratedSubject = "listing.moderated"
	ChatMessageSentSubject  = "chat.message.sent"
)

// conn is the slice of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type Publisher struct {
	nc     conn
	logger *logger.Logger
}

type ListingEvent struct {
	ID         string               `json:"id"`
	SellerID   string               `json:"sellerId"`
	Title      string               `json:"title"`
	Category   string               `json:"category"`
	Price      float64              `json:"price"`
	Status     domain.ListingStatus `json:"status"`
	IsSold     bool                 `json:"isSold"`
	OccurredAt time.Time            `json:"occurredAt"`
}

type ChatMessageEvent struct {
	MessageID string    `json:"messageId"`
	RoomID    string    `json:"roomId"`
	SenderID  string    `json:"senderId"`
	SentAt    time.Time `json:"sentAt"`
}

func NewNATSPublisher(cfg config.NATSConfig, log *logger.Logger) (*Publisher, error) {
	log = log.Named("nats_publisher")
	opts := []nats.Option{
		nats.Name("marketplace-service"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &Publisher{nc: nc, logger: log}, nil
}

func (p *Publisher) PublishListingCreated(ctx context.Context, l *domain.Listing) error {
	return p.publish(ListingCreatedSubject, listingEvent(l))
}

func (p *Publisher) PublishListingModerated(ctx context.Context, l *domain.Listing) error {
	return p.publish(ListingModeratedSubject, listingEvent(l))
}

func (p *Publisher) PublishMessageSent(ctx context.Context, msg *chat.Message) error {
	return p.publish(ChatMessageSentSubject, ChatMessageEvent{
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		SenderID:  msg.SenderID,
		SentAt:    msg.SentAt,
	})
}

func listingEvent(l *domain.Listing) ListingEvent {
	return ListingEvent{
		ID:         l.ID,
		SellerID:   l.SellerID,
		Title:      l.Title,
		Category:   l.Category,
		Price:      l.Price,
		Status:     l.Status,
		IsSold:     l.IsSold,
		OccurredAt: l.UpdatedAt,
	}
}

func (p *Publisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.logger.Debug("Published NATS message", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return nil
}

// Close drains pending messages before closing the connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Error("Failed to drain NATS connection", zap.Error(err))
	}
}
