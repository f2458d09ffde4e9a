package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUserIDFromContext extracts the caller's user ID from the Gin context.
// Returns the user ID and true if present, or empty string and false if the
// request carried no X-User-ID header. When absent it responds 400 itself.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_user_id"})
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_user_id"})
		return "", false
	}
	return userIDStr, true
}

// OptionalUserID returns the caller's user ID if the request carried one.
// Never writes a response; endpoints that allow anonymous calls use this.
func OptionalUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if s, ok := userID.(string); ok {
			return s
		}
	}
	return ""
}
