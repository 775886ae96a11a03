package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sewline/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig controls which requests get profiling labels.
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths and SkipPathPrefixes exclude infrastructure endpoints
	// whose profiles are noise (health probes, docs).
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig labels everything except health and docs endpoints.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics"},
		SkipPathPrefixes: []string{"/swagger", "/api-docs"},
	}
}

// Profiling attaches Pyroscope labels to each request with the default
// configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig wraps handler execution in profiling labels so
// profiles can be filtered by controller, route pattern and method. The
// route pattern keeps cardinality low; raw paths never become labels.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), requestLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func requestLabels(c *gin.Context) map[string]string {
	labels := map[string]string{
		telemetry.ProfilingLabelMethod: c.Request.Method,
	}
	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}
	if controller := controllerFromRoute(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}
	return labels
}

// controllerFromRoute picks the resource segment out of a route pattern:
// "/api/v1/supplier-orders/:id/receipts" yields "supplier-orders".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return ""
}

// isVersionSegment reports whether a path segment looks like "v1", "v2", ...
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
