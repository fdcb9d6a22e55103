package chunkstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/embeddings"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory  = "memory"
	BackendChromem = "chromem"
	BackendQdrant  = "qdrant"
)

// Config selects and configures the chunk store backend.
type Config struct {
	// Backend is one of "memory", "chromem" or "qdrant".
	Backend string `koanf:"backend"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	c.Chromem.ApplyDefaults()
	c.Qdrant.ApplyDefaults()
}

// New creates the configured chunk store backend.
//
// The durable backends store embeddings only, so they require an embedder;
// without one the in-memory store is the only valid choice.
func New(ctx context.Context, cfg Config, embedder embeddings.Embedder, logger *zap.Logger) (Store, error) {
	cfg.ApplyDefaults()

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(logger), nil
	case BackendChromem:
		if embedder == nil {
			return nil, fmt.Errorf("%w: chromem backend requires an embedder", ErrInvalidConfig)
		}
		return NewChromemStore(cfg.Chromem, embedder, logger)
	case BackendQdrant:
		if embedder == nil {
			return nil, fmt.Errorf("%w: qdrant backend requires an embedder", ErrInvalidConfig)
		}
		return NewQdrantStore(ctx, cfg.Qdrant, logger)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
