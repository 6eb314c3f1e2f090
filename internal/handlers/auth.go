package handlers

import (
	"net/http"

	"livsoul/internal/models"
	"livsoul/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserContextKey is where the auth middleware parks the loaded account.
const UserContextKey = "currentUser"

// CurrentUser pulls the authenticated account out of the request
// context. The second return is false on public routes.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(UserContextKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"tokens": result.Tokens})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, _ := CurrentUser(c)
	respondData(c, http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, _ := CurrentUser(c)

	var in services.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": updated})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, _ := CurrentUser(c)

	var in struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Current and new passwords are required")
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user.ID, in.CurrentPassword, in.NewPassword); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Password changed successfully")
}

// Logout is stateless on the server side; clients discard their tokens.
// The endpoint exists so the client flow has a definite end point to call.
func (h *AuthHandler) Logout(c *gin.Context) {
	respondMessage(c, http.StatusOK, "Logged out successfully")
}
