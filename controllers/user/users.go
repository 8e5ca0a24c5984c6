package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/auth"
	"github.com/junaidrashid-git/pawshop-api/cart"
	"github.com/junaidrashid-git/pawshop-api/middleware"
	"go.uber.org/zap"
)

type SignUpInput struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"full_name"`
	GuestToken string `json:"guest_token"`
}

type SignInInput struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	GuestToken string `json:"guest_token"`
}

// mergeGuestCart folds the cart of a guest token into the signed-in user's cart.
// Failures are logged; signing in still succeeds.
func mergeGuestCart(c *gin.Context, svc *auth.Service, sessions *cart.Sessions, guestToken, userID string, logger *zap.Logger) bool {
	if guestToken == "" {
		return false
	}
	claims, err := svc.Authenticate(c.Request.Context(), guestToken)
	if err != nil || !claims.IsGuest() {
		return false
	}
	merged, err := sessions.Merge(c.Request.Context(), cart.GuestKey(claims.Subject), cart.UserKey(userID))
	if err != nil {
		logger.Warn("guest cart merge failed", zap.String("user_id", userID), zap.Error(err))
	}
	return merged
}

func writeAuthError(c *gin.Context, err error, logger *zap.Logger) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("auth request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Something went wrong. Please try again."})
	}
}

// POST /auth/signup
func SignUp(svc *auth.Service, sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignUpInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		session, err := svc.SignUp(c.Request.Context(), input.Email, input.Password, input.FullName)
		if err != nil {
			writeAuthError(c, err, logger)
			return
		}
		merged := mergeGuestCart(c, svc, sessions, input.GuestToken, session.Profile.ID, logger)
		c.JSON(http.StatusCreated, gin.H{"session": session, "cart_merged": merged})
	}
}

// POST /auth/signin
func SignIn(svc *auth.Service, sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignInInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		session, err := svc.SignIn(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			writeAuthError(c, err, logger)
			return
		}
		merged := mergeGuestCart(c, svc, sessions, input.GuestToken, session.Profile.ID, logger)
		c.JSON(http.StatusOK, gin.H{"session": session, "cart_merged": merged})
	}
}

// POST /auth/signout
func SignOut(svc *auth.Service, sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := svc.SignOut(c.Request.Context(), claims); err != nil {
			writeAuthError(c, err, logger)
			return
		}
		if key, ok := middleware.CartKey(c); ok {
			sessions.Close(key)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
	}
}

// POST /auth/guest
func CreateGuest(svc *auth.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.Guest()
		if err != nil {
			logger.Error("guest token failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// GET /auth/me
func GetMe(svc *auth.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		profile, err := svc.Profile(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, auth.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			writeAuthError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
