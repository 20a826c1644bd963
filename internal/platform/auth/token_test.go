package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		tok, err := m.Issue("u1", "seller")
		require.NoError(t, err)
		claims, err := m.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "seller", claims.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := NewTokenManager("other", time.Hour).Issue("u1", "buyer")
		require.NoError(t, err)
		_, err = m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenManager("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := old.Issue("u1", "buyer")
		require.NoError(t, err)
		_, err = m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
