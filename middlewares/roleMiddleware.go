package middlewares

import (
	"net/http"

	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"github.com/gin-gonic/gin"
)

// RequireRoles rejects requests whose authenticated claim is missing or whose
// role is outside the allow-list.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim := CtxValue(c.Request.Context())
		if claim == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !models.UserRole(claim.Role).OneOf(roles) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}

		c.Next()
	}
}
