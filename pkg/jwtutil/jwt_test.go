package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestConfig() {
	Initialize(&JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestGenerateAndValidateToken(t *testing.T) {
	initTestConfig()

	token, err := GenerateToken("admin@agrofount.com", 7, "superadmin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@agrofount.com", claims.Email)
	assert.Equal(t, uint(7), claims.AdminID)
	assert.Equal(t, "superadmin", claims.Role)
}

func TestExpiredTokenForcesLogout(t *testing.T) {
	initTestConfig()

	token, err := GenerateTokenWithExpiry("admin@agrofount.com", 7, "admin", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestMalformedTokenForcesLogout(t *testing.T) {
	initTestConfig()

	for _, token := range []string{"garbage", "a.b", "", "header.payload"} {
		claims, err := ValidateToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrSessionExpired, "token %q", token)
	}
}

func TestTamperedSignatureIsRejected(t *testing.T) {
	initTestConfig()

	token, err := GenerateToken("admin@agrofount.com", 7, "admin")
	require.NoError(t, err)

	Initialize(&JWTConfig{SigningKey: "a-different-key", ExpirationHours: 1})
	claims, err := ValidateToken(token)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
}

func TestUninitializedConfig(t *testing.T) {
	Initialize(nil)
	defer initTestConfig()

	_, err := GenerateToken("admin@agrofount.com", 1, "")
	assert.Error(t, err)

	_, err = ValidateToken("anything")
	assert.Error(t, err)
}
