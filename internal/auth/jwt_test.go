package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickchat/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecretKey: "test-secret",
		JWTExpiry:    time.Hour,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(42, "alice@example.com", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(42, "alice@example.com", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(context.Background(), token, "other-secret", nil)
	assert.Error(t, err)
}

type fakeBlacklist struct {
	revoked map[string]bool
}

func (f *fakeBlacklist) Add(_ context.Context, jti string, _ time.Time) error {
	f.revoked[jti] = true
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func TestValidateTokenRejectsRevokedJTI(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(42, "alice@example.com", cfg)
	require.NoError(t, err)

	bl := &fakeBlacklist{revoked: map[string]bool{}}
	claims, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, bl)
	require.NoError(t, err)

	require.NoError(t, bl.Add(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, err = ValidateToken(context.Background(), token, cfg.JWTSecretKey, bl)
	assert.Error(t, err)
}
