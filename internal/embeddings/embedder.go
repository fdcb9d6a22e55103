package embeddings

import (
	"context"
	"errors"
)

// Sentinel errors for embedding operations.
var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnavailable indicates the embedding provider has no credential configured.
	ErrUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder generates vector embeddings from text.
//
// Embeddings are dense numerical representations that capture semantic
// meaning, enabling similarity search. Implementations do not retry; the
// caller decides retry policy.
type Embedder interface {
	// Available reports whether the provider has a credential configured.
	// It performs no network I/O.
	Available() bool

	// EmbedDocuments generates embeddings for multiple texts.
	// Returns one embedding per input text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
