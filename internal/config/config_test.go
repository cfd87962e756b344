package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "math_mentor.db", cfg.DBPath)
	assert.Equal(t, "rag/documents", cfg.DocsDir)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 128, cfg.Retrieval.CacheSize)
	assert.Equal(t, 0.7, cfg.Verifier.MinConfidence)
	assert.Equal(t, "localhost:50061", cfg.Server.Listen)
	assert.Equal(t, 1024, cfg.Server.MaxSessions)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLAndMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: other.db
retrieval:
  top_k: 5
verifier:
  min_confidence: 0.5
log:
  level: debug
  development: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 128, cfg.Retrieval.CacheSize, "unset keys keep defaults")
	assert.Equal(t, 0.5, cfg.VerifierConfig().MinConfidence)
	assert.True(t, cfg.Log.Development)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "math_mentor.db", cfg.DBPath)
}

func TestBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MENTOR_DB", ":memory:")
	t.Setenv("MENTOR_TOP_K", "7")
	t.Setenv("MENTOR_LISTEN", "127.0.0.1:9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, 7, cfg.RetrievalConfig().TopK)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)

	t.Setenv("MENTOR_TOP_K", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db", func(c *Config) { c.DBPath = "" }},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"negative cache", func(c *Config) { c.Retrieval.CacheSize = -1 }},
		{"no sessions", func(c *Config) { c.Server.MaxSessions = 0 }},
		{"confidence above one", func(c *Config) { c.Verifier.MinConfidence = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
