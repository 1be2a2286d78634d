package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory limiter. Each key gets a
// token budget that refills when its window elapses.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	tokens   int
	windowAt time.Time
}

// NewRateLimiter starts a limiter allowing limit requests per window.
// A background sweep evicts keys that have gone quiet.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.windowAt) > rl.window*2 {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow spends one token for key, reporting whether any was left.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowAt) >= rl.window {
		rl.buckets[key] = &bucket{tokens: rl.limit - 1, windowAt: now}
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Remaining reports the tokens key still has in the current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || time.Since(b.windowAt) >= rl.window {
		return rl.limit
	}
	return b.tokens
}

// RateLimit throttles by client IP, or by account and IP once the
// request is authenticated.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if accountID := GetJWTAccountID(c); accountID != "" {
			key = accountID + ":" + key
		}

		if !limiter.Allow(key) {
			rejectThrottled(c, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
			return
		}

		setRateLimitHeaders(c, limiter, key)
		c.Next()
	}
}

// AuthRateLimit throttles sign-in endpoints on a separate, stricter
// budget. Keys are prefixed so auth attempts never drain the general
// limiter, and blocked responses carry a Retry-After hint.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:" + c.ClientIP()

		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			rejectThrottled(c, "AUTH_RATE_LIMIT_EXCEEDED", "Too many authentication attempts. Please try again later.")
			return
		}

		setRateLimitHeaders(c, limiter, key)
		c.Next()
	}
}

// RateLimitByKey throttles on a caller-supplied key, for routes where
// neither IP nor account is the right unit.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			rejectThrottled(c, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, limiter *RateLimiter, key string) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
}

func rejectThrottled(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}
