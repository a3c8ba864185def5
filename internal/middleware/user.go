package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey is the context key for the calling user
	UserIDKey = "user_id"
	// UserIDHeader carries the caller's identity, set by the auth proxy
	UserIDHeader = "X-User-ID"
)

// RequireUser reads the caller's identity from the X-User-ID header and
// rejects requests without one.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":       "UNAUTHORIZED",
					"message":    "Missing " + UserIDHeader + " header",
					"request_id": GetRequestID(c),
				},
			})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID retrieves the caller's identity from the Gin context.
// Returns an empty string if not found.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
