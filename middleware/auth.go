package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/auth"
	"github.com/junaidrashid-git/pawshop-api/cart"
)

const claimsKey = "auth_claims"

// Authenticator turns a bearer token into verified claims.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Claims, error)
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return header
}

func authenticate(c *gin.Context, a Authenticator) (*auth.Claims, bool) {
	raw := bearerToken(c)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		return nil, false
	}
	claims, err := a.Authenticate(c.Request.Context(), raw)
	if err != nil {
		msg := "Invalid or expired token"
		if errors.Is(err, auth.ErrTokenRevoked) {
			msg = "Token has been signed out"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return nil, false
	}
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.Subject)
	return claims, true
}

// RequireSession accepts signed-in users and guests.
func RequireSession(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, a); !ok {
			return
		}
		c.Next()
	}
}

// RequireUser accepts signed-in users only.
func RequireUser(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, a)
		if !ok {
			return
		}
		if claims.IsGuest() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sign in to continue"})
			return
		}
		c.Next()
	}
}

// Claims returns the claims stored by one of the auth middlewares.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// CartKey is the cart session key of the authenticated caller.
func CartKey(c *gin.Context) (string, bool) {
	claims, ok := Claims(c)
	if !ok {
		return "", false
	}
	if claims.IsGuest() {
		return cart.GuestKey(claims.Subject), true
	}
	return cart.UserKey(claims.Subject), true
}
