package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type ipWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter caps the number of requests each client IP may make per window.
// Inference requests are expensive, so a single noisy client could otherwise
// starve everyone else.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string]*ipWindow
	limit  int
	window time.Duration
	sweep  time.Time
}

// NewRateLimiter allows limit requests per window for each client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:   make(map[string]*ipWindow),
		limit:  limit,
		window: window,
		sweep:  time.Now().Add(window),
	}
}

// take records one request for ip and reports whether it is within the limit,
// along with the seconds until the window resets. Expired entries are swept
// lazily, at most once per window.
func (rl *RateLimiter) take(ip string) (allowed bool, retryAfter int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.After(rl.sweep) {
		for k, w := range rl.seen {
			if now.After(w.resetAt) {
				delete(rl.seen, k)
			}
		}
		rl.sweep = now.Add(rl.window)
	}

	w := rl.seen[ip]
	if w == nil || now.After(w.resetAt) {
		w = &ipWindow{resetAt: now.Add(rl.window)}
		rl.seen[ip] = w
	}
	w.count++
	if w.count <= rl.limit {
		return true, 0
	}
	return false, int(time.Until(w.resetAt).Seconds()) + 1
}

// Handler rejects requests over the limit with 429. RealIP runs earlier in
// the chain, so RemoteAddr holds the client address.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := rl.take(r.RemoteAddr)
		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"too many requests, try again later"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
