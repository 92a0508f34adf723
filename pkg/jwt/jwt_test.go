package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		time.Hour,
		24*time.Hour,
	)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	roles := []string{"user", "admin"}

	token, err := svc.GenerateAccessToken(userID, "devotee@example.com", roles)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "devotee@example.com", claims.Email)
	assert.Equal(t, roles, claims.Roles)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(userID, "devotee@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	refreshToken, err := svc.GenerateRefreshToken(userID, "devotee@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refreshToken)
	assert.Error(t, err, "refresh tokens must not pass access validation")
}

func TestWrongSecretRejected(t *testing.T) {
	svc := newTestService()
	other := NewService("different-secret", "different-refresh-secret", time.Hour, 24*time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "devotee@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		-time.Minute, // already expired
		24*time.Hour,
	)

	token, err := svc.GenerateAccessToken(uuid.New(), "devotee@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.True(t, svc.IsTokenExpired(token))
}

func TestIsTokenExpired(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(uuid.New(), "devotee@example.com", []string{"user"})
	require.NoError(t, err)

	assert.False(t, svc.IsTokenExpired(token))
	assert.True(t, svc.IsTokenExpired("not-a-token"))
}
