package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type MockDialer struct {
	sent []*gomail.Message
	err  error
}

func (m *MockDialer) DialAndSend(msgs ...*gomail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msgs...)
	return nil
}

func TestSMTPNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("approved", func(t *testing.T) {
		d := &MockDialer{}
		n := &SMTPNotifier{dialer: d, from: "noreply@campus.edu", logger: logger.NewNop()}
		err := n.NotifyListingModerated(ctx, "seller@campus.edu", &domain.Listing{ID: "l1", Title: "Desk", Status: domain.StatusApproved})
		require.NoError(t, err)
		require.Len(t, d.sent, 1)

		assert.Equal(t, []string{"seller@campus.edu"}, d.sent[0].GetHeader("To"))
		assert.Equal(t, []string{"Your listing is live"}, d.sent[0].GetHeader("Subject"))
		assert.Equal(t, []string{"noreply@campus.edu"}, d.sent[0].GetHeader("From"))
	})

	t.Run("send failure", func(t *testing.T) {
		n := &SMTPNotifier{dialer: &MockDialer{err: errors.New("dial tcp")}, logger: logger.NewNop()}
		err := n.NotifyListingModerated(ctx, "seller@campus.edu", &domain.Listing{Status: domain.StatusRejected})
		assert.Error(t, err)
	})
}

func TestModerationMessage(t *testing.T) {
	subject, body := moderationMessage(&domain.Listing{Title: "Lamp", Status: domain.StatusRejected})
	assert.Equal(t, "Your listing was not approved", subject)
	assert.Contains(t, body, `"Lamp"`)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(logger.NewNop())
	assert.NoError(t, n.NotifyListingModerated(context.Background(), "x@y.z", &domain.Listing{}))
}
