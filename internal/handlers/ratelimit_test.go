package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/config"
)

func TestRequestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	limiter := newRequestRateLimiter(2, time.Minute, func() time.Time { return now })

	require.True(t, limiter.Allow("seller-1"))
	require.True(t, limiter.Allow("seller-1"))
	assert.False(t, limiter.Allow("seller-1"))

	// independent keys do not share the allowance
	assert.True(t, limiter.Allow("seller-2"))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, limiter.Allow("seller-1"))
}

func TestRequestRateLimiterDisabled(t *testing.T) {
	assert.Nil(t, newRequestRateLimiter(0, time.Minute, nil))
	assert.Nil(t, newRequestRateLimiter(10, 0, nil))

	var limiter *requestRateLimiter
	assert.True(t, limiter.Allow("anyone"))
}

func throttledRouter(limits config.RateLimitConfig, clock func() time.Time) chi.Router {
	r := chi.NewRouter()
	r.Use(rateLimitMiddleware(limits, clock))
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRateLimitMiddlewareThrottlesByAddress(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	router := throttledRouter(config.RateLimitConfig{DefaultPerMinute: 2, AuthenticatedPerMinute: 5}, func() time.Time { return now })

	get := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, get("10.0.0.1:1234").Code)
	require.Equal(t, http.StatusOK, get("10.0.0.1:1234").Code)

	rec := get("10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "rate_limited", body["error"])

	// a different address still passes
	assert.Equal(t, http.StatusOK, get("10.0.0.2:1234").Code)
}

func TestRateLimitMiddlewareAuthenticatedAllowance(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	router := throttledRouter(config.RateLimitConfig{DefaultPerMinute: 1, AuthenticatedPerMinute: 3}, func() time.Time { return now })

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: "seller-1", Roles: []string{auth.RoleSeller}}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get().Code, i)
	}
	assert.Equal(t, http.StatusTooManyRequests, get().Code)
}

func TestRateLimitMiddlewareDisabledLimits(t *testing.T) {
	router := throttledRouter(config.RateLimitConfig{}, time.Now)

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
