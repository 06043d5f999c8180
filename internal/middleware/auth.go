// Package middleware holds the gin middleware chain: principal
// resolution, request logging, metrics, rate limiting and CORS.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
)

// PrincipalHeader carries the opaque principal ID issued by the
// external identity provider.
const PrincipalHeader = "X-User-ID"

// Principal resolves the calling principal and stores it on the request
// context. A bearer token takes precedence when a JWT manager is
// configured; otherwise the opaque header is trusted as-is, identity
// resolution being the directory service's problem. Requests without a
// principal are rejected.
func Principal(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := ""

		if authHeader := c.GetHeader("Authorization"); authHeader != "" && jwtManager != nil {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.ErrInvalidToken.Error()})
				return
			}
			subject, err := jwtManager.Validate(parts[1])
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.ErrInvalidToken.Error()})
				return
			}
			principal = subject
		}

		if principal == "" {
			principal = c.GetHeader(PrincipalHeader)
		}
		if principal == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}
