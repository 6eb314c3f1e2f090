package router

import (
	"net/http"
	"strings"

	"livsoul/internal/auth"
	"livsoul/internal/handlers"
	"livsoul/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// loadUser resolves a bearer token to a live account. Loading from the
// database rather than trusting the claims means deleted or deactivated
// accounts lose access as soon as their current request ends.
func loadUser(c *gin.Context, tokens *auth.Manager, users services.UserStore) bool {
	token := bearerToken(c)
	if token == "" {
		return false
	}
	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		return false
	}
	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		return false
	}
	c.Set(handlers.UserContextKey, user)
	return true
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(tokens *auth.Manager, users services.UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadUser(c, tokens, users) {
			log.Debug("rejected unauthenticated request",
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}
		c.Next()
	}
}

// OptionalAuth loads the account when a valid token is present and
// proceeds as anonymous otherwise.
func OptionalAuth(tokens *auth.Manager, users services.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		loadUser(c, tokens, users)
		c.Next()
	}
}

// RequireDoctor gates a route to doctor accounts. It must run after
// Authenticate.
func RequireDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := handlers.CurrentUser(c)
		if !ok || !user.IsDoctor() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Doctor access required",
			})
			return
		}
		c.Next()
	}
}
