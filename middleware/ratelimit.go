// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepThreshold bounds the tracked-client map before idle entries are purged.
const sweepThreshold = 1024

// ClientRateLimiter applies a per-client token bucket, keyed by client IP.
// Used on the credential endpoints to slow brute-force attempts.
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter creates a limiter allowing perMinute requests per
// client with a burst of the same size. perMinute <= 0 disables limiting.
func NewClientRateLimiter(perMinute int) *ClientRateLimiter {
	if perMinute <= 0 {
		return &ClientRateLimiter{}
	}
	return &ClientRateLimiter{
		clients: make(map[string]*clientBucket),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *ClientRateLimiter) Allow(key string) bool {
	if l.clients == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.clients) >= sweepThreshold {
		l.sweepLocked()
	}

	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = b
	}
	b.lastSeen = time.Now()

	return b.limiter.Allow()
}

// sweepLocked drops clients idle long enough to have refilled their bucket.
func (l *ClientRateLimiter) sweepLocked() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for key, b := range l.clients {
		if b.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Limit wraps a handler, rejecting over-limit clients with 429.
func (l *ClientRateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(GetClientIP(r)) {
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
			return
		}
		next(w, r)
	}
}
