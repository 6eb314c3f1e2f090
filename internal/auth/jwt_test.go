package auth

import (
	"testing"
	"time"

	"livsoul/internal/config"
	"livsoul/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(accessTTL time.Duration) *Manager {
	return NewManager(config.JWTConfig{
		Secret:     "test-secret-key",
		AccessTTL:  accessTTL,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "livsoul-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	manager := testManager(15 * time.Minute)
	claims := &Claims{
		UserID: uuid.New(),
		Email:  "patient@example.com",
		Role:   models.RolePatient,
	}

	pair, err := manager.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	parsed, err := manager.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, parsed.UserID)
	assert.Equal(t, claims.Email, parsed.Email)
	assert.Equal(t, claims.Role, parsed.Role)

	refreshed, err := manager.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, refreshed.UserID)
}

func TestTokenTypeMismatch(t *testing.T) {
	manager := testManager(15 * time.Minute)
	pair, err := manager.GenerateTokenPair(&Claims{UserID: uuid.New(), Role: models.RoleDoctor})
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = manager.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestExpiredToken(t *testing.T) {
	manager := testManager(-1 * time.Minute)
	pair, err := manager.GenerateTokenPair(&Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTamperedToken(t *testing.T) {
	manager := testManager(15 * time.Minute)
	pair, err := manager.GenerateTokenPair(&Claims{UserID: uuid.New()})
	require.NoError(t, err)

	other := NewManager(config.JWTConfig{
		Secret: "a-different-secret", AccessTTL: time.Minute,
		RefreshTTL: time.Hour, Issuer: "livsoul-test",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = manager.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
