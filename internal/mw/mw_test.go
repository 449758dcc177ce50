package mw

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r *gin.Engine, method, path, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/me", Identity("X-User-ID"), func(c *gin.Context) {
		c.String(http.StatusOK, ActorID(c))
	})

	w := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestCache_ScopedPerUser(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	store := cache.New(time.Minute, time.Minute)
	r.GET("/data", Identity("X-User-ID"), Cache(store, time.Minute), func(c *gin.Context) {
		calls.Add(1)
		c.String(http.StatusOK, "hello "+ActorID(c))
	})

	first := do(r, http.MethodGet, "/data", "u1")
	second := do(r, http.MethodGet, "/data", "u1")
	other := do(r, http.MethodGet, "/data", "u2")

	assert.Equal(t, "hello u1", first.Body.String())
	assert.Equal(t, "hello u1", second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "hello u2", other.Body.String())
	assert.EqualValues(t, 2, calls.Load())
}

func TestCache_SkipsErrors(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.GET("/fail", Identity("X-User-ID"), Cache(cache.New(time.Minute, time.Minute), time.Minute), func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusInternalServerError)
	})

	do(r, http.MethodGet, "/fail", "u1")
	do(r, http.MethodGet, "/fail", "u1")
	assert.EqualValues(t, 2, calls.Load())
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/ping", Identity("X-User-ID"), RateLimiter(rate.Limit(0.001), 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "u1").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "u1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/ping", "u1").Code)

	// Buckets are per user.
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "u2").Code)
}

func TestKeyedRateLimiter_ExpiresIdleBuckets(t *testing.T) {
	l := NewKeyedRateLimiter(rate.Limit(1), 1, 20*time.Millisecond)

	first := l.Limiter("u1")
	assert.Same(t, first, l.Limiter("u1"))
	assert.Equal(t, 1, l.Len())

	time.Sleep(60 * time.Millisecond)

	assert.NotSame(t, first, l.Limiter("u1"), "idle bucket should have been dropped")
}
