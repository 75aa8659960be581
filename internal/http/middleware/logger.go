package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one line per request with request_id, caller role and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		role := "-"
		if rc, ok := GetRequestContext(c); ok {
			role = rc.Role
		}
		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d role=%s latency_ms=%.3f ip=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			role,
			float64(time.Since(start).Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}
