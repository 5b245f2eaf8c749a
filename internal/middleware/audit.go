// audit.go provides Gin middleware that writes a structured log line for every
// admin mutation that completed, recording the action, auth method, client IP,
// and request id. Domain-level key events (created, claimed, rejections,
// deleted) are written by the licensing service into the key_events table;
// this middleware covers the HTTP surface above it.
package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware logs completed admin write operations.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "OPTIONS" || c.Request.Method == "GET" {
			return
		}

		authMethod := c.GetString(AuthMethodKey)
		requestID := c.GetString(RequestIDKey)

		logger := slog.Info
		if c.Writer.Status() >= 400 {
			logger = slog.Warn
		}

		logger("admin action",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"auth_method", authMethod,
			"client_ip", c.ClientIP(),
			"request_id", requestID,
		)
	}
}
