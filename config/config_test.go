package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 10, cfg.Pipeline.MaxRounds)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.RetrievalTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VAIDYA_SERVER_ADDR", ":9001")
	t.Setenv("VAIDYA_MODEL_PROVIDER", "anthropic")
	t.Setenv("VAIDYA_PIPELINE_MAX_ROUNDS", "4")
	t.Setenv("VAIDYA_LOG_LEVEL", "debug")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.Server.Addr)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, 4, cfg.Pipeline.MaxRounds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vaidya.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7777"
pipeline:
  top_k: 3
  turn_timeout: 30s
database:
  dsn: "host=localhost user=vaidya dbname=vaidya"
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.TurnTimeout)
	assert.Contains(t, cfg.Database.DSN, "dbname=vaidya")
	// Unset keys keep their defaults.
	assert.Equal(t, 10, cfg.Pipeline.MaxRounds)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
