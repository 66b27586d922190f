package middleware

import (
	"strings"

	"nursesrent/services/auth"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// JWTAuthMiddleware resolves the bearer token into the caller's principal.
func JWTAuthMiddleware(authSvc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, utils.Unauthenticated("You are not logged in! Please log in to get access."))
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		principal, err := authSvc.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Set("userID", principal.UserID)
		c.Set("role", string(principal.Role))
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok
}
