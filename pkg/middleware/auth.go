package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bryanlu3000/sign-in-demo/internal/tokens"
)

// EmailKey is the gin context key under which the verified subject email is stored
const EmailKey = "email"

// RequireAccessToken returns a Gin middleware that verifies Bearer access tokens.
// A missing or malformed Authorization header is 401; a token that fails
// verification (bad signature, expired) is 403.
func RequireAccessToken(accessSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		email, err := tokens.VerifyToken(token, accessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}

		c.Set(EmailKey, email)
		c.Next()
	}
}
