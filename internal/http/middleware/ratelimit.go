// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the in-memory token-bucket limiter that guards the
// webhook and web-form endpoints. Buckets are kept per client identity and
// idle ones are evicted opportunistically so a burst of one-off senders
// cannot grow the map without bound.
//
// The limiter is process-local. A horizontally scaled deployment needs a
// shared limiter (e.g., Redis-backed) to enforce a global ceiling; this one
// is edge-level abuse control, not an authorization mechanism.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Idle buckets older than bucketIdleTTL are dropped during sweeps; a sweep
// runs every sweepEvery lookups.
const (
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = 5000
)

// keyFunc maps a request to the identity that keys its token bucket. The
// returned string must be stable for the duration of the request
// (e.g., "ip:<addr>").
type keyFunc func(*gin.Context) string

// KeyByClientIP buckets by client IP address. Webhook deliveries and form
// submissions carry no authenticated identity, so the remote address is the
// only stable key available at middleware time. The "ip:" prefix leaves room
// for other namespaces.
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// bucket pairs a limiter with the last time its key was seen.
type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-key token-bucket limit. Buckets are created on
// demand under a mutex and swept after a TTL of inactivity. Safe for
// concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups uint64
}

// NewRateLimiter builds a limiter replenishing rps tokens per second with
// the given burst, keyed by keyFn. A burst of zero or less is coerced to 1
// so a misconfigured limiter still admits traffic one request at a time.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
	}
}

// bucketFor returns the limiter for key, creating it if absent.
//
// The sweep runs before the requested bucket is touched so that an expired
// bucket is evicted even when it is the one being fetched.
func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= bucketIdleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{lim: lim, lastSeen: now}
	return lim
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay of an already completed submission. Replays are served without
// consuming tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler returns the enforcement middleware. Over-limit requests are
// rejected with 429, a Retry-After hint, and the service's standard error
// envelope:
//
//	{"request_id": "<uuid>", "code": "rate_limited", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.bucketFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
