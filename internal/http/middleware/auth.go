package middleware

import (
	"net/http"
	"strings"

	"elitetransport/internal/domain/models"
	"elitetransport/internal/services"

	"github.com/gin-gonic/gin"
)

const authUserKey = "auth_user"

// RequireAuth resolves the bearer token to a user or aborts with 401.
func RequireAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		user, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(authUserKey, user)
		c.Next()
	}
}

// RequireAdmin gates admin endpoints on the configured email allow-list.
// Must run after RequireAuth.
func RequireAdmin(isAdmin func(email string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetAuthUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !isAdmin(user.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// GetAuthUser fetches the authenticated user set by RequireAuth.
func GetAuthUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
