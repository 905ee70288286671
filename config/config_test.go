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

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 15*time.Second, cfg.ToolTimeout)
	assert.False(t, cfg.StrictMemory)
	assert.Equal(t, "windowed", cfg.Memory.Strategy)
	assert.Equal(t, 50, cfg.Memory.MaxMessages)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: ollama
model: llama3
max_iterations: 5
strict_memory: true
memory:
  strategy: hybrid
  recall_limit: 8
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3", cfg.Model)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.True(t, cfg.StrictMemory)
	assert.Equal(t, "hybrid", cfg.Memory.Strategy)
	assert.Equal(t, 8, cfg.Memory.RecallLimit)
	// Unset fields keep their defaults.
	assert.Equal(t, 50, cfg.Memory.MaxMessages)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad_provider.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("provider: cohere\n"), 0o600))
	_, err := Load(bad)
	require.Error(t, err)

	badMem := filepath.Join(dir, "bad_memory.yaml")
	require.NoError(t, os.WriteFile(badMem, []byte("memory:\n  strategy: magic\n"), 0o600))
	_, err = Load(badMem)
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AGENTLOOP_PROVIDER", "anthropic")
	t.Setenv("AGENTLOOP_MAX_ITERATIONS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 3, cfg.MaxIterations)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "windowed", cfg.Memory.Strategy)
}
