package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/auth"
	"go.uber.org/zap"
)

// RequireAdmin lets through callers presenting the admin API key, or a signed-in user
// with an active admin grant.
func RequireAdmin(a Authenticator, admins auth.AdminChecker, apiKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validAPIKey(c, apiKey) {
			c.Set("admin_via", "api_key")
			c.Next()
			return
		}
		claims, ok := authenticate(c, a)
		if !ok {
			return
		}
		if claims.IsGuest() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		isAdmin, err := admins.IsAdmin(c.Request.Context(), claims.Subject)
		if err != nil {
			logger.Error("admin check failed", zap.String("user_id", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not verify admin access. Please try again."})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Set("admin_via", "token")
		c.Next()
	}
}
