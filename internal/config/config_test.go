package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "QuickChat", cfg.AppName)
	assert.Equal(t, "5050", cfg.Server.Port)
	assert.Equal(t, "/ws", cfg.Server.WebSocketPath)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 15*time.Minute, cfg.Auth.OTPExpiry)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(10), cfg.Storage.MaxFileSizeMB)
	assert.Equal(t, 60, cfg.WebSocket.PongWaitSeconds)
	assert.Equal(t, 3*time.Second, cfg.Relay.ResolveTimeout)
	assert.True(t, cfg.CORS.AllowCredentials)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
SERVER:
  PORT: "9090"
AUTH:
  JWT_SECRET_KEY: file-secret
  OTP_EXPIRY: 5m
RELAY:
  RESOLVE_TIMEOUT: 500ms
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecretKey)
	assert.Equal(t, 5*time.Minute, cfg.Auth.OTPExpiry)
	assert.Equal(t, 500*time.Millisecond, cfg.Relay.ResolveTimeout)
	// Untouched sections keep their defaults.
	assert.Equal(t, "postgres", cfg.Database.Type)
}
