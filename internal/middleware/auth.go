package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"spclub/api/internal/security"
	"spclub/api/internal/service"
)

const ClaimsKey = "admin_claims"

// Auth verifies the bearer token and exposes its claims to downstream
// handlers. The token is self-contained: no storage lookup is needed to
// authenticate. Session activity is refreshed on a goroutine so the request
// is never delayed by it.
func Auth(secret string, sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "no token provided, authorization denied",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAdminToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "token is invalid or expired",
			})
			return
		}

		if sessions != nil {
			go func(adminID, deviceID string) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				sessions.Touch(ctx, adminID, deviceID)
			}(claims.AdminID, claims.DeviceID)
		}

		c.Set(ClaimsKey, *claims)
		c.Next()
	}
}

// ClaimsFrom pulls the verified claims out of the request context.
func ClaimsFrom(c *gin.Context) (security.AdminClaims, bool) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return security.AdminClaims{}, false
	}
	claims, ok := val.(security.AdminClaims)
	return claims, ok
}
