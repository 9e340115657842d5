package middleware

import (
	"time"

	"quicknotes/internal/logging"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs HTTP requests. Credentials never appear in the
// fields; only routing and timing data does.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		extras := log.Fields{
			"status":     status,
			"latency_ms": logging.DurationMS(latency),
			"user_agent": c.Request.UserAgent(),
			"method":     method,
			"path":       path,
			"kind":       logging.ErrorKind(status, len(c.Errors) > 0),
		}
		logging.WithReq(c, extras).Info("http_request")
	}
}
