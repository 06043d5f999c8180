package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"duitsplit/internal/auth"
)

// RateLimit enforces a fixed-window per-principal request budget backed
// by Redis (INCR + EXPIRE). Redis failures let the request through:
// the limiter protects the backend, it is not an availability
// dependency.
func RateLimit(client *redis.Client, requestsPerMinute int) gin.HandlerFunc {
	const window = time.Minute

	return func(c *gin.Context) {
		principal := auth.PrincipalFromContext(c.Request.Context())
		if principal == "" {
			principal = c.ClientIP()
		}
		key := "rate_limit:" + principal

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			slog.Warn("Rate limit check failed", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}

		if count > int64(requestsPerMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later.",
			})
			return
		}

		c.Next()
	}
}
