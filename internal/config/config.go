// Package config provides configuration loading for ragd.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/ragd/internal/chunkstore"
	"github.com/fyrsmithlabs/ragd/internal/logging"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/telemetry"
)

// Config is the full ragd configuration.
type Config struct {
	Server     ServerConfig      `koanf:"server"`
	Logging    logging.Config    `koanf:"logging"`
	Telemetry  telemetry.Config  `koanf:"telemetry"`
	Store      chunkstore.Config `koanf:"store"`
	RAG        rag.Config        `koanf:"rag"`
	Embeddings EmbeddingsConfig  `koanf:"embeddings"`
	Providers  ProvidersConfig   `koanf:"providers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ReadTimeout     Duration `koanf:"read_timeout"`
	WriteTimeout    Duration `koanf:"write_timeout"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// EmbeddingsConfig configures the embedding service credential and model.
type EmbeddingsConfig struct {
	BaseURL string   `koanf:"base_url"`
	Model   string   `koanf:"model"`
	APIKey  Secret   `koanf:"api_key"`
	Timeout Duration `koanf:"timeout"`
}

// ProviderConfig configures one answer-generation provider.
type ProviderConfig struct {
	BaseURL string   `koanf:"base_url"`
	Model   string   `koanf:"model"`
	APIKey  Secret   `koanf:"api_key"`
	Timeout Duration `koanf:"timeout"`
}

// ProvidersConfig configures all answer-generation providers.
type ProvidersConfig struct {
	Gemini  ProviderConfig `koanf:"gemini"`
	OpenAI  ProviderConfig `koanf:"openai"`
	Claude  ProviderConfig `koanf:"claude"`
	Mistral ProviderConfig `koanf:"mistral"`
	// Probe verifies vendor reachability at startup.
	Probe bool `koanf:"probe"`
}

// ApplyDefaults fills unset fields throughout the config tree.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8521
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(30 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		// Answer generation can take minutes across a fallback chain.
		c.Server.WriteTimeout = Duration(10 * time.Minute)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	c.Logging.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.RAG.ApplyDefaults()
}

// Validate checks the configuration tree.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.RAG.Validate(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	return nil
}
