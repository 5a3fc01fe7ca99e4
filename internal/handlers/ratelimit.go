package handlers

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/config"
	"github.com/sellerdesk/api/internal/platform/httpx"
)

// requestRateLimiter counts requests per caller over a fixed window.
type requestRateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time
	mu     sync.Mutex
	store  map[string]rateWindow
}

type rateWindow struct {
	count int
	reset time.Time
}

// newRequestRateLimiter returns nil when the limit or window disables
// throttling; a nil limiter allows everything.
func newRequestRateLimiter(limit int, window time.Duration, clock func() time.Time) *requestRateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &requestRateLimiter{
		limit:  limit,
		window: window,
		clock:  clock,
		store:  make(map[string]rateWindow),
	}
}

func (l *requestRateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.store[key]
	if !ok || now.After(entry.reset) {
		l.store[key] = rateWindow{count: 1, reset: now.Add(l.window)}
		l.pruneExpiredLocked(now)
		return true
	}

	if entry.count >= l.limit {
		return false
	}
	entry.count++
	l.store[key] = entry
	return true
}

func (l *requestRateLimiter) pruneExpiredLocked(now time.Time) {
	if len(l.store) == 0 {
		return
	}
	for key, entry := range l.store {
		if now.After(entry.reset) {
			delete(l.store, key)
		}
	}
}

// RateLimitMiddleware throttles requests per caller. Authenticated callers are
// keyed by their identity and get the higher allowance; everyone else shares
// the per-address allowance.
func RateLimitMiddleware(limits config.RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimitMiddleware(limits, time.Now)
}

func rateLimitMiddleware(limits config.RateLimitConfig, clock func() time.Time) func(http.Handler) http.Handler {
	defaultLimiter := newRequestRateLimiter(limits.DefaultPerMinute, time.Minute, clock)
	authLimiter := newRequestRateLimiter(limits.AuthenticatedPerMinute, time.Minute, clock)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := defaultLimiter
			key := "addr:" + clientAddr(r)
			if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity != nil && identity.UID != "" {
				limiter = authLimiter
				key = "uid:" + identity.UID
			}
			if !limiter.Allow(key) {
				httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many requests, slow down", http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
