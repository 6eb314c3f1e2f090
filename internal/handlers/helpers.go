// Package handlers implements the JSON HTTP surface of the service.
package handlers

import (
	"errors"
	"net/http"

	"livsoul/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondData wraps a successful payload in the standard envelope.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage is for operations with no payload to return.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondFieldErrors reports a rejected request with per-field details.
func respondFieldErrors(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognized is logged and reported as a 500 without internals leaking.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondFieldErrors(c, verr.Fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrAccountDisabled):
		respondError(c, http.StatusForbidden, "Account is deactivated")
	case errors.Is(err, services.ErrForbidden):
		respondError(c, http.StatusForbidden, "Operation not permitted")
	case errors.Is(err, services.ErrEmailTaken):
		respondError(c, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "Resource not found")
	default:
		log.Error("unhandled service error",
			zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
