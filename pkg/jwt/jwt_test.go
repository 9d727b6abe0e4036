package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "alice@example.com", "user", "free")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "free", claims.Subscription)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	other := NewService("other-secret", time.Hour)

	token, err := service.GenerateToken(uuid.New(), "alice@example.com", "user", "free")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
	assert.False(t, other.IsTokenExpired(token))
}

func TestExpiredToken(t *testing.T) {
	service := NewService("test-secret", -time.Minute)

	token, err := service.GenerateToken(uuid.New(), "alice@example.com", "user", "free")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestValidateGarbageToken(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
	assert.False(t, service.IsTokenExpired("not-a-token"))
}
