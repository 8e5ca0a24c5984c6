package adminController

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/auth"
	"github.com/junaidrashid-git/pawshop-api/middleware"
	"go.uber.org/zap"
)

type GrantAdminRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// GET /admin/check
func CheckAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"is_admin": true, "via": c.GetString("admin_via")}
		if claims, ok := middleware.Claims(c); ok {
			resp["user_id"] = claims.Subject
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /admin/admins
func GetAllAdmins(admins *auth.Admins, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := admins.ListAdmins(c.Request.Context())
		if err != nil {
			logger.Error("failed to fetch admins", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch admins"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// POST /admin/admins
func GrantAdmin(admins *auth.Admins, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GrantAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		grantedBy := ""
		if claims, ok := middleware.Claims(c); ok {
			grantedBy = claims.Subject
		}
		grant, err := admins.Grant(c.Request.Context(), req.UserID, grantedBy)
		if err != nil {
			if errors.Is(err, auth.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			logger.Error("failed to grant admin", zap.String("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to grant admin access"})
			return
		}
		logger.Info("admin granted", zap.String("user_id", req.UserID), zap.String("granted_by", grantedBy))
		c.JSON(http.StatusOK, grant)
	}
}

// DELETE /admin/admins/:user_id
func RevokeAdmin(admins *auth.Admins, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if claims, ok := middleware.Claims(c); ok && claims.Subject == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot revoke your own admin access"})
			return
		}
		if err := admins.Revoke(c.Request.Context(), userID); err != nil {
			if errors.Is(err, auth.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
				return
			}
			logger.Error("failed to revoke admin", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to revoke admin access"})
			return
		}
		logger.Info("admin revoked", zap.String("user_id", userID))
		c.JSON(http.StatusOK, gin.H{"message": "Admin access revoked"})
	}
}

// GET /admin/users
func GetAllUsers(admins *auth.Admins, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		profiles, err := admins.ListProfiles(c.Request.Context())
		if err != nil {
			logger.Error("failed to fetch profiles", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}
