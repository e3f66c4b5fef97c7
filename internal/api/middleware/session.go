package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/auth"
	"github.com/shotlist/analytics-backend/internal/models"
)

const userContextKey = "currentUser"

// SessionHeader is where clients present their opaque session token.
const SessionHeader = "X-Session-ID"

// Session authenticates the request via the X-Session-ID header and
// puts the resolved user into the gin context.
func Session(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			abortUnauthorized(c, "Session required")
			return
		}

		user, err := authService.Authenticate(token)
		if err != nil {
			if errors.Is(err, auth.ErrAccountInactive) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"success":    false,
					"message":    "Account is inactive",
					"error_code": "FORBIDDEN",
				})
				return
			}
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"message":    message,
		"error_code": "UNAUTHORIZED",
	})
}

// GetUser returns the authenticated user set by the Session middleware.
func GetUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
