package router

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a token bucket per client key. Buckets refill lazily on
// access; idle buckets are evicted once they would be full again.
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.RWMutex

	rate  float64 // tokens per second
	burst float64
	now   func() time.Time

	lastSweep time.Time
}

// clientLimiter handles rate limiting for a single client
type clientLimiter struct {
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

// NewRateLimiter allows requestsPerMinute sustained requests per client with
// bursts of up to burst requests. A non-positive burst defaults to requestsPerMinute.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = requestsPerMinute
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     float64(requestsPerMinute) / 60,
		burst:    float64(burst),
		now:      time.Now,
	}
}

// Allow takes one token from the client's bucket. When the bucket is empty it
// returns false and how long until the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()
	limiter := rl.getLimiter(key, now)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	elapsed := now.Sub(limiter.last).Seconds()
	if elapsed > 0 {
		limiter.tokens = math.Min(rl.burst, limiter.tokens+elapsed*rl.rate)
		limiter.last = now
	}

	if limiter.tokens >= 1 {
		limiter.tokens--
		return true, 0
	}

	if rl.rate <= 0 {
		return false, time.Minute
	}
	wait := time.Duration((1 - limiter.tokens) / rl.rate * float64(time.Second))
	return false, wait
}

// getLimiter gets or creates the bucket for a client
func (rl *RateLimiter) getLimiter(key string, now time.Time) *clientLimiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}

	rl.sweep(now)

	limiter = &clientLimiter{
		tokens: rl.burst,
		last:   now,
	}
	rl.limiters[key] = limiter
	return limiter
}

// sweep drops buckets that have refilled completely. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if rl.rate <= 0 || now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now

	full := time.Duration(rl.burst / rl.rate * float64(time.Second))
	for key, limiter := range rl.limiters {
		limiter.mu.Lock()
		idle := now.Sub(limiter.last)
		limiter.mu.Unlock()
		if idle >= full {
			delete(rl.limiters, key)
		}
	}
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// RateLimitMiddleware rejects clients that exceed the limiter with 429
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, wait := rl.Allow(c.ClientIP())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Response{
				Success: false,
				Error:   "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
