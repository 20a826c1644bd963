package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(UserIDFromContext(r.Context()) + "/" + RoleFromContext(r.Context())))
}

func TestJWTAuth(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	token, err := tm.Issue("u1", "seller")
	require.NoError(t, err)
	h := JWTAuth(tm, logger.NewNop())(http.HandlerFunc(whoami))

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "bearer header", header: "Bearer " + token, status: http.StatusOK, body: "u1/seller"},
		{name: "query token", query: "?token=" + token, status: http.StatusOK, body: "u1/seller"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(string) (*auth.Claims, error) { return nil, errors.New("nope") }

func TestJWTAuth_VerifierError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	JWTAuth(failingVerifier{}, logger.NewNop())(http.HandlerFunc(whoami)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token is invalid or expired"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	h := RequireRole("seller")(http.HandlerFunc(whoami))
	for role, want := range map[string]int{
		"seller": http.StatusOK,
		"admin":  http.StatusOK,
		"buyer":  http.StatusForbidden,
		"":       http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req = req.WithContext(WithIdentity(req.Context(), "u", role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequestIDAndMetrics(t *testing.T) {
	m := metrics.NewMetricsManager("test")
	r := chi.NewRouter()
	r.Use(RequestID, Metrics(m), RequestLogger(logger.NewNop()))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("/items/{id}", "404")))

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get("X-Request-ID"))
}
