package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":8008", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, "hobbyhub-api", cfg.Auth.Issuer)
	assert.Contains(t, cfg.SocialProviders, "google")
}

func TestLoadServer_EnvOverride(t *testing.T) {
	t.Setenv("HOBBYHUB_SERVER_ADDR", ":9999")
	t.Setenv("HOBBYHUB_AUTH_ACCESS_TTL", "1m")

	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.Auth.AccessTTL)
}

func TestLoadServer_FileAndValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: \"\"\n"), 0o600))

	_, err := LoadServer(path)
	require.Error(t, err)

	_, err = LoadServer(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLoadClient_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadClient(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8008/api", cfg.BaseURL)
	assert.Equal(t, "http://localhost:8008/health", cfg.ProbeURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadClient_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "api:\n  base_url: https://hub.example.com/api/\n  cache_ttl: 30s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com/api", cfg.BaseURL)
	assert.Equal(t, "https://hub.example.com/health", cfg.ProbeURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestHealthURL_RejectsRelative(t *testing.T) {
	_, err := HealthURL("/api")
	require.Error(t, err)
}
