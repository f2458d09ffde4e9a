package middleware

import (
	"github.com/gin-gonic/gin"
)

// IdentityMiddleware resolves the calling user from the X-User-ID header and
// stores it in the request context for handlers.
//
// There is no session system: the API sits behind a gateway that authenticates
// the caller and forwards the user ID, so the header is trusted as-is.
// Anonymous requests are allowed through; handlers that need a user reject
// them individually.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
