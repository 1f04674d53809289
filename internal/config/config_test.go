package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/store"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gaucho.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Consensus.Validators)
	assert.Equal(t, "gaucho", cfg.Temporal.TaskQueue)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
judge:
  provider: openai
  endpoint: http://localhost:11434/v1
  model: llama3
  timeout: 45s
consensus:
  validators: 4
store:
  driver: sqlite
  dsn: file:test.db
`)

	cfg, err := load(path, env(map[string]string{
		"GAUCHO_CONSENSUS_VALIDATORS": "1",
		"GAUCHO_LOG_FORMAT":           "text",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "openai", cfg.Judge.Provider)
	assert.Equal(t, 45*time.Second, cfg.Judge.Timeout)
	assert.Equal(t, 1, cfg.Consensus.Validators, "env wins over file")
	assert.Equal(t, 3, cfg.Consensus.MaxRounds, "unset keys keep defaults")
	assert.Equal(t, "file:test.db", cfg.Store.DSN)
	assert.True(t, cfg.Judge.Retry.MaxAttempts >= 1)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "unknown key", file: "judge:\n  modle: x\n"},
		{name: "bad driver", file: "store:\n  driver: cassandra\n"},
		{name: "bad log level", env: map[string]string{"GAUCHO_LOG_LEVEL": "loud"}},
		{name: "non-numeric int", env: map[string]string{"GAUCHO_CONSENSUS_MAX_ROUNDS": "many"}},
		{name: "rounds out of range", env: map[string]string{"GAUCHO_CONSENSUS_MAX_ROUNDS": "0"}},
		{name: "http mcp without addr", env: map[string]string{"GAUCHO_MCP_TRANSPORT": "http", "GAUCHO_MCP_ADDR": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := load(path, env(tt.env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), env(nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := load(writeFile(t, ""), env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
