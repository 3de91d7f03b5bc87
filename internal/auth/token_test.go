package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-backend/internal/config"
	"guild-backend/internal/model"
)

func newTestManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  ttl,
	})
	require.NoError(t, err)
	return m
}

func TestTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager(&config.AuthConfig{})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)
	userID := uuid.New()

	token, err := m.Generate(userID, model.RoleAdmin)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager(t, time.Hour)
	m.ttl = -time.Minute

	token, err := m.Generate(uuid.New(), model.RolePlayer)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Generate(uuid.New(), model.RolePlayer)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = m.Validate(tampered)
	assert.Error(t, err)
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	m := newTestManager(t, time.Hour)

	other, err := NewTokenManager(&config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour})
	require.NoError(t, err)

	token, err := other.Generate(uuid.New(), model.RolePlayer)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}
