// Package chunker splits document text into overlapping word-bounded chunks
// for independent embedding and retrieval.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig indicates invalid chunking parameters.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

const (
	// DefaultChunkSize is the default chunk size in words.
	DefaultChunkSize = 500

	// DefaultChunkOverlap is the default overlap between chunks in words.
	DefaultChunkOverlap = 100
)

// Config holds chunking parameters.
type Config struct {
	// ChunkSize is the maximum chunk length in words.
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the number of words shared between adjacent chunks.
	ChunkOverlap int `koanf:"chunk_overlap"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
}

// Validate validates the configuration.
//
// An overlap equal to or larger than the chunk size would keep the window
// from advancing, so it is rejected up front.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must be non-negative, got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Split splits text into overlapping chunks of at most cfg.ChunkSize words.
//
// Word boundaries are whitespace-delimited. Text at or under the chunk size
// is returned as a single chunk containing the whole input. Otherwise the
// window advances by ChunkSize-ChunkOverlap words per step and the final
// chunk may be shorter than ChunkSize.
func Split(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) <= cfg.ChunkSize {
		return []string{text}, nil
	}

	step := cfg.ChunkSize - cfg.ChunkOverlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + cfg.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks, nil
}
