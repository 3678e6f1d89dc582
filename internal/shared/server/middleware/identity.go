package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/shared/server/respond"
)

const (
	userIDKey = "userId"
	roleKey   = "userRole"

	// DefaultUserID is assigned when the caller does not identify itself.
	DefaultUserID = "default_user"
)

// Identity resolves the acting user from the X-User-Id header. There is no
// real authentication in this system; the header only names the owner of
// resumes and delivery jobs.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			userID = DefaultUserID
		}
		c.Set(userIDKey, userID)
		if role := strings.TrimSpace(c.GetHeader("X-Role")); role != "" {
			c.Set(roleKey, role)
		}
		c.Next()
	}
}

// UserIDFromContext returns the user ID stored by Identity middleware.
func UserIDFromContext(c *gin.Context) string {
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok && id != "" {
		return id
	}
	return DefaultUserID
}

// RequireAdmin rejects requests whose X-Role header is not admin or owner.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(roleKey)
		switch role {
		case "admin", "owner":
			c.Next()
		default:
			respond.Error(c, http.StatusForbidden, "forbidden", "Admin role required", nil)
		}
	}
}
