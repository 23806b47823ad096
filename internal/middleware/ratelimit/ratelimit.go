// Package ratelimit throttles requests per client over a fixed one-minute window.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

const (
	window     = time.Minute
	staleAfter = 10 * time.Minute
)

// Limiter counts requests per client key
type Limiter struct {
	mu                sync.Mutex
	clients           map[string]*clientInfo
	requestsPerMinute int
	now               func() time.Time
}

type clientInfo struct {
	windowStart time.Time
	lastRequest time.Time
	requests    int
}

// NewLimiter returns a limiter allowing requestsPerMinute per client.
// Stale entries are dropped by CleanExpired, which satisfies cache.Cleaner.
func NewLimiter(requestsPerMinute int) *Limiter {
	return &Limiter{
		clients:           make(map[string]*clientInfo),
		requestsPerMinute: requestsPerMinute,
		now:               time.Now,
	}
}

// Allow records a request from key and reports whether it is within the limit
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok || now.Sub(c.windowStart) >= window {
		l.clients[key] = &clientInfo{windowStart: now, lastRequest: now, requests: 1}
		return true
	}
	c.requests++
	c.lastRequest = now
	return c.requests <= l.requestsPerMinute
}

// CleanExpired forgets clients idle for more than ten minutes
func (l *Limiter) CleanExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-staleAfter)
	removed := 0
	for key, c := range l.clients {
		if c.lastRequest.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of tracked clients
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the limit with 429. key extracts the
// client identity; onLimit may be nil.
func (l *Limiter) Middleware(key func(*http.Request) string, onLimit http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(key(r)) {
				w.Header().Set("Retry-After", "60")
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}
