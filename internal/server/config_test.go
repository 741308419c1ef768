package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hearts-server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nonexistent.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 100, cfg.Game.EndScore)
	assert.Equal(t, int64(0), cfg.Game.Seed)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	require.NoError(t, cfg.Validate())
}

func TestLoadServerConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}

game {
  end_score = 50
  seed      = 42
}

rooms {
  idle_timeout_minutes = 10
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 50, cfg.Game.EndScore)
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, 10*time.Minute, cfg.IdleTimeout())
	require.NoError(t, cfg.Validate())
}

func TestLoadServerConfigFillsOmittedFields(t *testing.T) {
	path := writeConfigFile(t, `
server {
  port = 3000
}

game {}

rooms {}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:3000", cfg.ListenAddress())
	assert.Equal(t, 100, cfg.Game.EndScore)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
}

func TestLoadServerConfigRejectsMalformedHCL(t *testing.T) {
	path := writeConfigFile(t, `server { port = `)

	_, err := LoadServerConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"port too low", func(c *ServerConfig) { c.Server.Port = 0 }},
		{"port too high", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"end score zero", func(c *ServerConfig) { c.Game.EndScore = 0 }},
		{"negative end score", func(c *ServerConfig) { c.Game.EndScore = -5 }},
		{"idle timeout zero", func(c *ServerConfig) { c.Rooms.IdleTimeoutMinutes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
