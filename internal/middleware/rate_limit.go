package middleware

import (
	"net/http"
	"time"

	"hobbyhub/internal/cache"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL bounds how long an unused per-key limiter is remembered.
const limiterIdleTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per key (client IP).
type RateLimiter struct {
	limits *cache.SimpleCache[string, *rate.Limiter]
	rps    rate.Limit
	burst  int
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst per key.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limits: cache.NewSimpleCache[string, *rate.Limiter](cache.Options{ConcurrencySafe: true}),
		rps:    rate.Limit(rps),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	return rl.limits.GetOrSet(key, limiterIdleTTL, func() *rate.Limiter {
		return rate.NewLimiter(rl.rps, rl.burst)
	})
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Sweep drops limiters idle for longer than limiterIdleTTL.
func (rl *RateLimiter) Sweep() {
	rl.limits.PurgeExpired()
}

// Middleware rejects requests over budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
