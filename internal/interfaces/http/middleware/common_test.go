package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/api/v1/reports/pnl", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORSWithConfig(t *testing.T) {
	allowed := CORSConfig{
		AllowOrigins:     []string{"https://erp.sewline.example"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	t.Run("whitelisted origin gets the full header set", func(t *testing.T) {
		router := corsRouter(allowed)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/pnl", nil)
		req.Header.Set("Origin", "https://erp.sewline.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://erp.sewline.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no CORS headers but the request runs", func(t *testing.T) {
		router := corsRouter(allowed)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/pnl", nil)
		req.Header.Set("Origin", "https://elsewhere.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist rejects every cross-origin caller", func(t *testing.T) {
		router := corsRouter(DefaultCORSConfig())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/pnl", nil)
		req.Header.Set("Origin", "https://erp.sewline.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered 204 for allowed origins", func(t *testing.T) {
		router := corsRouter(allowed)
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports/pnl", nil)
		req.Header.Set("Origin", "https://erp.sewline.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://erp.sewline.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from an unknown origin is 204 without headers", func(t *testing.T) {
		router := corsRouter(allowed)
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports/pnl", nil)
		req.Header.Set("Origin", "https://elsewhere.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard origin never pairs with credentials", func(t *testing.T) {
		cfg := allowed
		cfg.AllowOrigins = []string{"*"}
		router := corsRouter(cfg)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/pnl", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("assigns an ID when the caller sends none", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagates the caller's ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-receipt-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-receipt-42", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-receipt-42", w.Body.String())
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
	// HSTS is off by default: dev deployments are plain HTTP
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("HSTS header assembles its directives", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		cfg.HSTSPreload = true

		router := gin.New()
		router.Use(SecureWithConfig(cfg))
		router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		hsts := w.Header().Get("Strict-Transport-Security")
		assert.Contains(t, hsts, "max-age=31536000")
		assert.Contains(t, hsts, "includeSubDomains")
		assert.Contains(t, hsts, "preload")
	})

	t.Run("CSP and Permissions-Policy can be switched off", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.CSPEnabled = false
		cfg.PermissionsPolicyEnabled = false

		router := gin.New()
		router.Use(SecureWithConfig(cfg))
		router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
		// the always-on headers remain
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})
}
