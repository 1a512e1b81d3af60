// Package logging provides gin middleware bridging HTTP traffic into the
// service logger.
package logging

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/northstar-funding/discovery/internal/logger"
)

// GinRequestLogger logs one structured line per completed request.
func GinRequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}

		if len(c.Errors) > 0 {
			log.Error("request failed", append(fields,
				logger.String("errors", c.Errors.String()))...)
			return
		}

		log.Info("request completed", fields...)
	}
}

// GinRecovery converts panics into 500 responses with a logged stack cause.
func GinRecovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			logger.String("path", c.Request.URL.Path),
			logger.Any("panic", recovered))
		c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
	})
}
