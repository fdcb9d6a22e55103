package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ragd/internal/chunkstore"
)

func TestSecretRedaction(t *testing.T) {
	s := Secret("sk-super-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "Secret([REDACTED])", s.GoString())
	assert.Equal(t, "sk-super-secret", s.Value())
	assert.True(t, s.IsSet())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))

	out, err := json.Marshal(struct{ Key Secret }{Key: s})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-super-secret")

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.Error(t, d.UnmarshalText([]byte("ninety")))

	text, err := Duration(2 * time.Minute).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", string(text))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8521, cfg.Server.Port)
	assert.Equal(t, chunkstore.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 500, cfg.RAG.Chunking.ChunkSize)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadTelemetryDisable(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("RAGD_TELEMETRY_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
store:
  backend: qdrant
  qdrant:
    host: vectors.internal
rag:
  top_k: 5
  chunking:
    chunk_size: 800
    chunk_overlap: 200
providers:
  gemini:
    api_key: g-key
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, chunkstore.BackendQdrant, cfg.Store.Backend)
	assert.Equal(t, "vectors.internal", cfg.Store.Qdrant.Host)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 800, cfg.RAG.Chunking.ChunkSize)
	assert.Equal(t, "g-key", cfg.Providers.Gemini.APIKey.Value())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("RAGD_SERVER_PORT", "9100")
	t.Setenv("RAGD_PROVIDERS_GEMINI_API_KEY", "env-key")
	t.Setenv("RAGD_STORE_QDRANT_HOST", "qdrant.env")
	t.Setenv("RAGD_RAG_CHUNKING_CHUNK_OVERLAP", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Providers.Gemini.APIKey.Value())
	assert.Equal(t, "qdrant.env", cfg.Store.Qdrant.Host)
	assert.Equal(t, 50, cfg.RAG.Chunking.ChunkOverlap)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8521, cfg.Server.Port)
}

func TestLoadRejectsLooseFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0600")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 99999\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "rag:\n  chunking:\n    chunk_size: 100\n    chunk_overlap: 100\n"))
	require.Error(t, err)
}

func TestEnvKeyTransform(t *testing.T) {
	tests := map[string]string{
		"RAGD_SERVER_PORT":               "server.port",
		"RAGD_SERVER_READ_TIMEOUT":       "server.read_timeout",
		"RAGD_LOGGING_FORMAT":            "logging.format",
		"RAGD_STORE_BACKEND":             "store.backend",
		"RAGD_STORE_QDRANT_VECTOR_SIZE":  "store.qdrant.vector_size",
		"RAGD_PROVIDERS_CLAUDE_API_KEY":  "providers.claude.api_key",
		"RAGD_RAG_TOP_K":                 "rag.top_k",
		"RAGD_RAG_CHUNKING_CHUNK_SIZE":   "rag.chunking.chunk_size",
		"RAGD_EMBEDDINGS_API_KEY":        "embeddings.api_key",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKeyTransform(in), in)
	}
}
