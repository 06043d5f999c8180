package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"duitsplit/internal/auth"
)

// RequestLogger logs every request with a correlation id, the resolved
// principal, status and duration.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Header("X-Request-ID", requestID)

		c.Next()

		principal := auth.PrincipalFromContext(c.Request.Context())
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"principal", principal,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
			slog.Error("Request failed", attrs...)
			return
		}
		if c.Writer.Status() >= 500 {
			slog.Error("Request failed", attrs...)
			return
		}
		if c.Writer.Status() >= 400 {
			slog.Warn("Request rejected", attrs...)
			return
		}
		slog.Info("Request completed", attrs...)
	}
}
