package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, "white", cfg.Game.PlayerColor)
	assert.Equal(t, "CLK_NONE", cfg.Game.ClockPreset)
	assert.Equal(t, time.Second, cfg.Game.TickInterval)
	assert.Equal(t, AgentBuiltin, cfg.Agent.Mode)
	assert.Equal(t, "info", cfg.Development.LogLevel)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9090
game:
  player_color: black
  clock_preset: CLK_G5
  tick_interval: 250ms
agent:
  think_time: 0s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("NANCHESS_SERVER_HOST", "0.0.0.0")
	t.Setenv("NANCHESS_DEVELOPMENT_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "black", cfg.Game.PlayerColor)
	assert.Equal(t, "CLK_G5", cfg.Game.ClockPreset)
	assert.Equal(t, 250*time.Millisecond, cfg.Game.TickInterval)
	assert.Equal(t, time.Duration(0), cfg.Agent.ThinkTime)
	assert.Equal(t, "debug", cfg.Development.LogLevel)
}

func TestValidate(t *testing.T) {
	t.Setenv("NANCHESS_AGENT_MODE", "remote")
	_, err := LoadFrom(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidConfig, "remote needs a key file")

	t.Setenv("NANCHESS_AGENT_MODE", "psychic")
	_, err = LoadFrom(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("NANCHESS_AGENT_MODE", "remote")
	t.Setenv("NANCHESS_AGENT_KEY_FILE", "agent.pem")
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "agent.pem", cfg.Agent.KeyFile)
}
