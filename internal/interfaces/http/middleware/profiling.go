package middleware

import (
	"context"
	"slices"

	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling tags CPU samples taken while serving a request with its route
// pattern and method. Unmatched routes and skipPaths are left untagged.
func Profiling(enabled bool, skipPaths ...string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || slices.Contains(skipPaths, route) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			telemetry.ProfilingLabelRoute, route,
			telemetry.ProfilingLabelMethod, c.Request.Method,
		)
	}
}
