package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// User is the identity attached to an authenticated request. The shop runs
// on a single shared token, so every caller is the same administrator.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

var adminUser = User{ID: 1, Username: "admin"}

// RequireToken checks the X-Token header or a Bearer token against the
// configured secret
func RequireToken(apiToken string) gin.HandlerFunc {
	if apiToken == "" {
		log.Fatalf("RequireToken needs a non-empty API token")
	}
	expected := []byte(apiToken)

	return func(c *gin.Context) {
		token := extractToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Authentication token required",
				"code":    "UNAUTHORIZED",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Invalid authentication token",
				"code":    "FORBIDDEN",
			})
			return
		}

		c.Set(userContextKey, adminUser)
		c.Next()
	}
}

// GetUser extracts the authenticated user from the Gin context
func GetUser(c *gin.Context) (User, error) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return User{}, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(User)
	if !ok {
		return User{}, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}
	return user, nil
}

func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get("X-Token")); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
