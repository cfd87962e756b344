// Package config loads the mentor configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/math-mentor/internal/logging"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

// #region types
// Config is the full process configuration.
type Config struct {
	DBPath    string            `yaml:"db_path"`
	DocsDir   string            `yaml:"docs_dir"`
	Retrieval RetrievalSection  `yaml:"retrieval"`
	Verifier  VerifierSection   `yaml:"verifier"`
	Server    ServerSection     `yaml:"server"`
	Log       logging.LogConfig `yaml:"log"`
}

// RetrievalSection configures the context retriever.
type RetrievalSection struct {
	TopK      int `yaml:"top_k"`
	CacheSize int `yaml:"cache_size"` // 0 disables the query-vector cache
}

// VerifierSection configures the verifier thresholds.
type VerifierSection struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

// ServerSection configures the network listeners.
type ServerSection struct {
	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metrics_listen"` // empty disables /metrics
	MaxSessions   int    `yaml:"max_sessions"`   // in-memory RPC sessions kept
}

// #endregion types

// #region defaults
// Default returns the built-in configuration.
func Default() *Config {
	r := retrieval.DefaultConfig()
	return &Config{
		DBPath:    "math_mentor.db",
		DocsDir:   "rag/documents",
		Retrieval: RetrievalSection{TopK: r.TopK, CacheSize: r.CacheSize},
		Verifier:  VerifierSection{MinConfidence: verifier.DefaultConfig().MinConfidence},
		Server:    ServerSection{Listen: "localhost:50061", MaxSessions: 1024},
		Log:       logging.LogConfig{Level: "info"},
	}
}

// #endregion defaults

// #region load
// Load reads path over the defaults and applies MENTOR_* overrides. An
// empty path or a missing file yields the defaults with overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.DBPath = envOr("MENTOR_DB", c.DBPath)
	c.DocsDir = envOr("MENTOR_DOCS_DIR", c.DocsDir)
	c.Server.Listen = envOr("MENTOR_LISTEN", c.Server.Listen)
	c.Server.MetricsListen = envOr("MENTOR_METRICS_LISTEN", c.Server.MetricsListen)
	c.Log.Level = envOr("MENTOR_LOG_LEVEL", c.Log.Level)
	if v := os.Getenv("MENTOR_TOP_K"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MENTOR_TOP_K: %w", err)
		}
		c.Retrieval.TopK = k
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate
// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be at least 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.CacheSize < 0 {
		return fmt.Errorf("retrieval.cache_size must not be negative, got %d", c.Retrieval.CacheSize)
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be at least 1, got %d", c.Server.MaxSessions)
	}
	if c.Verifier.MinConfidence < 0 || c.Verifier.MinConfidence > 1 {
		return fmt.Errorf("verifier.min_confidence must be in [0,1], got %v", c.Verifier.MinConfidence)
	}
	return nil
}

// #endregion validate

// #region conversions
// RetrievalConfig returns the retriever settings.
func (c *Config) RetrievalConfig() retrieval.RetrievalConfig {
	return retrieval.RetrievalConfig{TopK: c.Retrieval.TopK, CacheSize: c.Retrieval.CacheSize}
}

// VerifierConfig returns the verifier thresholds.
func (c *Config) VerifierConfig() verifier.VerifierConfig {
	return verifier.VerifierConfig{MinConfidence: c.Verifier.MinConfidence}
}

// #endregion conversions
