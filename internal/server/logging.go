package server

import (
	"time"

	"github.com/mrJTY/bookit/internal/auth"
	"github.com/mrJTY/bookit/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs HTTP requests with structured logging. The
// caller's user id is read after the handler chain so requests that passed
// auth are attributable to a marketplace user.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []any{
			"method", method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", clientIP,
			"bytes_out", c.Writer.Size(),
			"user_agent", c.Request.UserAgent(),
		}

		if userID, ok := auth.GetUserID(c); ok {
			fields = append(fields, "user_id", userID)
		}

		logger.Info("HTTP request", fields...)
	}
}
