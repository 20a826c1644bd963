// Package mailer sends moderation notices to sellers.
package mailer

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPNotifier struct {
	dialer sender
	from   string
	logger *logger.Logger
}

func NewSMTPNotifier(cfg config.SMTPConfig, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Sender,
		logger: log.Named("mailer"),
	}
}

func (n *SMTPNotifier) NotifyListingModerated(ctx context.Context, sellerEmail string, l *domain.Listing) error {
	subject, body := moderationMessage(l)

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", sellerEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("SMTPNotifier: send to %s: %w", sellerEmail, err)
	}
	n.logger.Info("Moderation notice sent", zap.String("listing_id", l.ID), zap.String("status", string(l.Status)))
	return nil
}

// LogNotifier records notices in the log when no SMTP server is configured.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.Named("mailer")}
}

func (n *LogNotifier) NotifyListingModerated(ctx context.Context, sellerEmail string, l *domain.Listing) error {
	subject, _ := moderationMessage(l)
	n.logger.Info("Moderation notice (smtp disabled)",
		zap.String("to", sellerEmail),
		zap.String("subject", subject),
	)
	return nil
}

func moderationMessage(l *domain.Listing) (subject, body string) {
	switch l.Status {
	case domain.StatusApproved:
		return "Your listing is live",
			fmt.Sprintf("Good news! Your listing %q has been approved and is now visible to other students.", l.Title)
	case domain.StatusRejected:
		return "Your listing was not approved",
			fmt.Sprintf("Your listing %q was rejected by a moderator. Please review the marketplace rules and try again.", l.Title)
	default:
		return "Listing status update",
			fmt.Sprintf("The status of your listing %q is now %s.", l.Title, l.Status)
	}
}
