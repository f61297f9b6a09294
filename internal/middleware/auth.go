// Package middleware holds the gin middleware chain: token auth and rate
// limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/service"
)

// Context keys set by Auth.
const (
	ContextUserKey   = "current_user"
	ContextUserIDKey = "user_id"
)

// Auth returns a middleware resolving "Authorization: Token <key>" headers
// through the token store. Requests resolving to the anonymous identity are
// rejected with 401.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	if authService == nil {
		panic("AuthService cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		key, ok := extractToken(c)
		if !ok {
			logrus.Warn("Auth middleware: missing or malformed Authorization header")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		identity, err := authService.ResolveToken(c.Request.Context(), key)
		if err != nil {
			logrus.WithError(err).Error("Auth middleware: token resolution failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process token"})
			c.Abort()
			return
		}
		if identity.Anonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, identity.User)
		c.Set(ContextUserIDKey, identity.UserID)
		logrus.WithField("user_id", identity.UserID).Debug("Auth middleware: user authenticated")
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context. Returns nil
// when the request never passed through Auth.
func CurrentUser(c *gin.Context) *domain.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// extractToken accepts "Token <key>" and "Bearer <key>" header forms.
func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Token") && !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
