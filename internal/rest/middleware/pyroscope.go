package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/pyroscope"
)

// PyroscopeMiddleware labels profile samples with the route being served
func PyroscopeMiddleware(profiler *pyroscope.Service) gin.HandlerFunc {
	if !profiler.IsEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// route templates only, ids would explode label cardinality
		labels := map[string]string{
			"method":   c.Request.Method,
			"endpoint": c.FullPath(),
			"handler":  fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
		}

		profiler.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
