package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const callerKey = "auth.caller"

// RequireAuth validates the bearer token and aborts with 401 when it is
// missing or invalid. The caller id becomes available via CallerID.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing or invalid authorization header"})
			return
		}

		claims, err := ValidateToken(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(callerKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid bearer token is
// present and otherwise lets the request through anonymously. Endpoints like
// code resolution serve both audiences and reveal more to authorized callers.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := ValidateToken(secret, tokenStr); err == nil {
				c.Set(callerKey, claims)
			}
		}
		c.Next()
	}
}

// CallerID returns the authenticated caller's id, or "" for anonymous requests.
func CallerID(c *gin.Context) string {
	if v, ok := c.Get(callerKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims.UserID()
		}
	}
	return ""
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}
