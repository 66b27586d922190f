package middleware

import (
	"nursesrent/models"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets through callers authenticated with one of roles. It must run after
// JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			utils.RespondError(c, utils.Unauthenticated("You are not logged in! Please log in to get access."))
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, utils.Forbidden("You do not have permission to perform this action"))
	}
}

// RequireVerified rejects callers whose email is not verified.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok || !p.IsVerified {
			utils.RespondError(c, utils.Forbidden("Please verify your email first"))
			return
		}
		c.Next()
	}
}
