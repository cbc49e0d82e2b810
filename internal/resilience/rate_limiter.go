package resilience

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig names a limiter and its refill rate and burst
// allowance, grounded on the teacher's RateLimiterConfig in
// internal/resilience/rate_limiter.go.
type RateLimiterConfig struct {
	Name  string
	Rate  float64 // requests per second
	Burst int
}

var (
	rateLimiters      = make(map[string]*rate.Limiter)
	rateLimitersMutex sync.RWMutex
)

// GetRateLimiter returns the named limiter, creating it on first use.
// Defaults (10 rps, burst 20) match the teacher's GetRateLimiter.
func GetRateLimiter(config RateLimiterConfig) *rate.Limiter {
	rateLimitersMutex.RLock()
	limiter, ok := rateLimiters[config.Name]
	rateLimitersMutex.RUnlock()
	if ok {
		return limiter
	}

	rateLimitersMutex.Lock()
	defer rateLimitersMutex.Unlock()
	if limiter, ok := rateLimiters[config.Name]; ok {
		return limiter
	}

	if config.Rate == 0 {
		config.Rate = 10
	}
	if config.Burst == 0 {
		config.Burst = 20
	}
	limiter = rate.NewLimiter(rate.Limit(config.Rate), config.Burst)
	rateLimiters[config.Name] = limiter
	return limiter
}

// GinMiddleware applies the named rate limiter to every request on the
// route it's mounted on, rejecting with 429 once the token bucket is
// exhausted rather than blocking the handler goroutine.
func GinMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	limiter := GetRateLimiter(config)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded for %s", config.Name),
			})
			return
		}
		c.Next()
	}
}
