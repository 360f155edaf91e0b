package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DefaultsWithoutFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "psyche.yaml"))
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 100, cfg.Dialogue.MaxTurns)
	assert.Equal(t, "similarity", cfg.Evaluation.ChiefComplaintPolicy)
}

func TestManager_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psyche.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  default_provider: openai
dialogue:
  max_turns: 300
store:
  backend: memory
`), 0644))

	m := NewManager(path)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.Equal(t, 300, cfg.Dialogue.MaxTurns)
	assert.Equal(t, "memory", cfg.Store.Backend)
	// untouched fields keep their defaults
	assert.Equal(t, "similarity", cfg.Evaluation.ChiefComplaintPolicy)
}

func TestManager_ValidationRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psyche.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: cassandra\n"), 0644))

	m := NewManager(path)
	assert.Error(t, m.Load())
}

func TestManager_EnvOverrides(t *testing.T) {
	t.Setenv("PSYCHE_LLM_PROVIDER", "google")
	t.Setenv("PSYCHE_STORE_BACKEND", "memory")

	m := NewManager(filepath.Join(t.TempDir(), "psyche.yaml"))
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "google", cfg.LLM.DefaultProvider)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestManager_OnChange(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "psyche.yaml"))

	var seen *Config
	m.OnChange(func(cfg *Config) { seen = cfg })

	require.NoError(t, m.Load())
	require.NotNil(t, seen, "watcher should fire on load")
	assert.Equal(t, m.Get(), seen)
}
