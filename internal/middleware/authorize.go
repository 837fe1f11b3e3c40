package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"spclub/api/internal/models"
)

// RequirePermission rejects requests whose token lacks the capability.
// Permissions are read from the token's embedded claims, not re-fetched
// from storage, so a revocation takes effect only when the token expires.
func RequirePermission(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "authentication required",
			})
			return
		}

		if !claims.Permissions.Has(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": fmt.Sprintf("you don't have permission to %s", capability),
			})
			return
		}

		c.Next()
	}
}
