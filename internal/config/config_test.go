package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "./data/pebble", cfg.Pebble.Path)
	assert.Equal(t, 512, cfg.Pebble.CacheMB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
pebble:
  path: /var/lib/ord
  no_sync: true
log:
  level: debug
metrics:
  enabled: false
`), 0o600))

	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("PEBBLE_CACHE_MB", "64")
	t.Setenv("LOG_DEVELOPMENT", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "/var/lib/ord", cfg.Pebble.Path)
	assert.Equal(t, 64, cfg.Pebble.CacheMB)
	assert.True(t, cfg.Pebble.NoSync)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "server: ["},
		{name: "bad port", yaml: "server:\n  port: 70000\n"},
		{name: "empty path", yaml: "pebble:\n  path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
