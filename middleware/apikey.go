package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

func validAPIKey(c *gin.Context, key string) bool {
	got := c.GetHeader("X-API-KEY")
	return key != "" && got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
}

// ValidateAPIKey guards machine-to-machine routes with the X-API-KEY header.
func ValidateAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validAPIKey(c, key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Next()
	}
}
