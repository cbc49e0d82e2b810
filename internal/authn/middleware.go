package authn

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// context keys populated by Middleware, read by RPC handlers that need the
// caller's identity (e.g. manage_context's userID parameter).
const (
	ContextKeyUserID   = "authn.user_id"
	ContextKeyTenantID = "authn.tenant_id"
	ContextKeyRoles    = "authn.roles"
)

// Middleware builds the gin auth handler for spec §6's two auth modes. In
// testing mode every request is assigned testUserID without a token; in
// production mode every request must carry a bearer token the validator
// accepts.
func Middleware(enabled bool, testing bool, testUserID string, validator *JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		if testing {
			c.Set(ContextKeyUserID, testUserID)
			c.Next()
			return
		}

		claims, err := validator.Validate(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Set(ContextKeyRoles, claims.Roles)
		c.Next()
	}
}
