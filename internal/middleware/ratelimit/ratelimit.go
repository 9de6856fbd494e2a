package ratelimit

import (
	"net/http"
	"time"

	"fortis/internal/cache"
)

// Limiter allows a fixed number of requests per client per minute.
type Limiter struct {
	clients           *cache.LRU[window]
	requestsPerMinute int
	now               func() time.Time
}

type window struct {
	start    time.Time
	requests int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	// MaxClients bounds how many client windows are tracked at once.
	MaxClients int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
	}
}

// NewLimiter creates a new rate limiter. Idle client windows expire after
// ten minutes; run a cache.Janitor over Cache() to reclaim them.
func NewLimiter(config Config) *Limiter {
	d := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = d.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = d.MaxClients
	}
	return &Limiter{
		clients:           cache.NewLRU[window](config.MaxClients, 10*time.Minute),
		requestsPerMinute: config.RequestsPerMinute,
		now:               time.Now,
	}
}

// Allow checks if a request from the given IP should be allowed
func (rl *Limiter) Allow(clientIP string) bool {
	now := rl.now()
	w := rl.clients.Update(clientIP, func(cur window, found bool) window {
		if !found || now.Sub(cur.start) >= time.Minute {
			return window{start: now, requests: 1}
		}
		cur.requests++
		return cur
	})
	return w.requests <= rl.requestsPerMinute
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.clients.Size()
}

// Cache exposes the client windows for expiry sweeps.
func (rl *Limiter) Cache() cache.Cleaner {
	return rl.clients
}

// Middleware limits state-changing requests. Reads are never limited.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", "60")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
