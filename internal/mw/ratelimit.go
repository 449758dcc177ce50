package mw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// KeyedRateLimiter keeps one token bucket per client key. Buckets of idle clients expire.
type KeyedRateLimiter struct {
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

// NewKeyedRateLimiter creates a limiter allowing r events per second with burst b per key.
// A bucket unused for idleTTL is dropped.
func NewKeyedRateLimiter(r rate.Limit, b int, idleTTL time.Duration) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: cache.New(idleTTL, idleTTL),
		r:        r,
		b:        b,
	}
}

// Limiter returns the bucket for key, creating it on first use, and extends its lifetime.
func (l *KeyedRateLimiter) Limiter(key string) *rate.Limiter {
	if v, found := l.limiters.Get(key); found {
		limiter := v.(*rate.Limiter)
		l.limiters.SetDefault(key, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(l.r, l.b)
	if err := l.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// Lost a race with another request for the same key.
		if v, found := l.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// Len reports how many client buckets are held, including expired ones not yet swept.
func (l *KeyedRateLimiter) Len() int {
	return l.limiters.ItemCount()
}

// RateLimiter is a middleware for per-client rate limiting. Clients are keyed by
// user id when Identity has run, and by IP otherwise.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b, limiterIdleTTL)
	return func(c *gin.Context) {
		key := ActorID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !limiter.Limiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
