package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sewline/backend/internal/infrastructure/telemetry"
)

// profilingProbe mounts the middleware in front of a handler that records
// the pprof labels visible during execution.
func profilingProbe(cfg ProfilingConfig, seen *map[string]string) *gin.Engine {
	router := gin.New()
	router.Use(ProfilingWithConfig(cfg))
	record := func(c *gin.Context) {
		labels := map[string]string{}
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		*seen = labels
		c.Status(http.StatusOK)
	}
	router.GET("/health", record)
	router.GET("/swagger/index.html", record)
	router.GET("/api/v1/supplier-orders/:id", record)
	router.POST("/api/v1/supplier-orders/:id/receipts", record)
	return router
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := DefaultProfilingConfig()
	assert.True(t, cfg.Enabled)
	assert.ElementsMatch(t, []string{"/health", "/healthz", "/ready", "/metrics"}, cfg.SkipPaths)
	assert.ElementsMatch(t, []string{"/swagger", "/api-docs"}, cfg.SkipPathPrefixes)
}

func TestProfilingWithConfig(t *testing.T) {
	do := func(router *gin.Engine, method, path string) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("labels carry method, route pattern and controller", func(t *testing.T) {
		var seen map[string]string
		router := profilingProbe(DefaultProfilingConfig(), &seen)
		do(router, http.MethodPost, "/api/v1/supplier-orders/GR-1/receipts")

		assert.Equal(t, "POST", seen[telemetry.ProfilingLabelMethod])
		assert.Equal(t, "/api/v1/supplier-orders/:id/receipts", seen[telemetry.ProfilingLabelRoute])
		assert.Equal(t, "supplier-orders", seen[telemetry.ProfilingLabelController])
	})

	t.Run("skip paths and prefixes stay unlabeled", func(t *testing.T) {
		for _, path := range []string{"/health", "/swagger/index.html"} {
			var seen map[string]string
			router := profilingProbe(DefaultProfilingConfig(), &seen)
			do(router, http.MethodGet, path)
			assert.Empty(t, seen, path)
		}
	})

	t.Run("disabled config is a pass-through", func(t *testing.T) {
		var seen map[string]string
		router := profilingProbe(ProfilingConfig{Enabled: false}, &seen)
		do(router, http.MethodGet, "/api/v1/supplier-orders/GR-1")
		assert.Empty(t, seen)
	})
}

func TestProfilingNestedLabelsCompose(t *testing.T) {
	router := gin.New()
	router.Use(ProfilingWithConfig(DefaultProfilingConfig()))

	var seen map[string]string
	router.GET("/api/v1/reports/pnl", func(c *gin.Context) {
		telemetry.WithProfilingLabels(c.Request.Context(),
			map[string]string{telemetry.ProfilingLabelOperation: "period_report"},
			func(ctx context.Context) {
				labels := map[string]string{}
				pprof.ForLabels(ctx, func(key, value string) bool {
					labels[key] = value
					return true
				})
				seen = labels
			})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/pnl", nil))

	assert.Equal(t, "reports", seen[telemetry.ProfilingLabelController])
	assert.Equal(t, "period_report", seen[telemetry.ProfilingLabelOperation])
}

func TestControllerFromRoute(t *testing.T) {
	cases := map[string]string{
		"/api/v1/supplier-orders/:id/receipts": "supplier-orders",
		"/api/v1/orders/:id/pnl":               "orders",
		"/api/v2/reports/pnl":                  "reports",
		"/healthz":                             "healthz",
		"/api/v1/:id":                          "",
		"":                                     "",
	}
	for route, want := range cases {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}
