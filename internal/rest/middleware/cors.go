package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/types"
)

var (
	corsAllowedHeaders = strings.Join([]string{
		"Content-Type",
		types.HeaderAuthorization,
		types.HeaderRequestID,
		types.HeaderIdempotency,
	}, ", ")
	// the browser needs Content-Disposition to name downloaded invoices
	corsExposedHeaders = strings.Join([]string{
		types.HeaderRequestID,
		"Content-Disposition",
	}, ", ")
)

// CORSMiddleware handles CORS headers
func CORSMiddleware(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
	h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
	h.Set("Access-Control-Max-Age", "86400")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
