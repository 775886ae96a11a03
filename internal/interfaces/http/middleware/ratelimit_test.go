package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimiter(t *testing.T, limit int, window time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Close)
	return rl
}

func TestRateLimiterAllow(t *testing.T) {
	t.Run("exhausts the window then refuses", func(t *testing.T) {
		rl := newRateLimiter(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("10.0.0.1"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		rl := newRateLimiter(t, 1, time.Minute)

		assert.True(t, rl.Allow("factory-floor"))
		assert.False(t, rl.Allow("factory-floor"))
		assert.True(t, rl.Allow("front-office"))
	})

	t.Run("window elapse resets the tokens", func(t *testing.T) {
		rl := newRateLimiter(t, 1, 20*time.Millisecond)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))

		time.Sleep(30 * time.Millisecond)
		assert.True(t, rl.Allow("10.0.0.1"))
	})
}

func TestRateLimiterRemaining(t *testing.T) {
	rl := newRateLimiter(t, 5, time.Minute)

	assert.Equal(t, 5, rl.Remaining("unseen-client"))

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	assert.Equal(t, 3, rl.Remaining("10.0.0.1"))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(rl *RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(rl))
		router.GET("/api/v1/reports/pnl", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	serve := func(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/pnl", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("rejects over-limit requests with the error envelope", func(t *testing.T) {
		router := newRouter(newRateLimiter(t, 2, time.Minute))

		for i := 0; i < 2; i++ {
			require.Equal(t, http.StatusOK, serve(router, "192.168.1.10:1234").Code)
		}

		w := serve(router, "192.168.1.10:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	})

	t.Run("limits per client IP", func(t *testing.T) {
		router := newRouter(newRateLimiter(t, 1, time.Minute))

		require.Equal(t, http.StatusOK, serve(router, "192.168.1.10:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(router, "192.168.1.10:1234").Code)
		assert.Equal(t, http.StatusOK, serve(router, "192.168.1.20:1234").Code)
	})

	t.Run("sets the rate limit headers", func(t *testing.T) {
		router := newRouter(newRateLimiter(t, 5, time.Minute))

		w := serve(router, "192.168.1.10:1234")
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

		w = serve(router, "192.168.1.10:1234")
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Remaining"))
	})
}
