package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	lookuper := envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "secret",
		"SERVER_PORT":        "9090",
		"APP_UPCOMING_LIMIT": "3",
	})

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"), lookuper)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "lecturealert", cfg.Database.DBName)
	assert.Equal(t, 3, cfg.App.UpcomingLimit)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \"7000\"\njwt:\n  secret: from-file\napp:\n  timezone: UTC\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := load(path, envconfig.MapLookuper(map[string]string{"JWT_SECRET": "from-env"}))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), envconfig.MapLookuper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is required")
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	lookuper := envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "secret",
		"APP_TIMEZONE": "Mars/Olympus",
	})
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), lookuper)
	require.Error(t, err)
}
