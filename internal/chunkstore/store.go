package chunkstore

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for chunk store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidChunk indicates a chunk with missing identity fields.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmbeddingRequired is returned by durable backends when a chunk
	// without an embedding is stored.
	ErrEmbeddingRequired = errors.New("chunk embedding required")

	// ErrConnectionFailed indicates the remote backend could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to chunk store backend")
)

// Chunk is a bounded contiguous word-span extracted from a document.
type Chunk struct {
	// ID is the deterministic chunk identity, see ChunkID.
	ID string

	// DocumentID identifies the parent document.
	DocumentID string

	// Index is the zero-based position of the chunk within the document.
	Index int

	// Text is the chunk content.
	Text string

	// Embedding is the chunk's vector. Nil is a valid state and selects
	// keyword retrieval for the document.
	Embedding []float32
}

// ChunkID returns the deterministic identity for a chunk, reconstructable
// from the document ID and chunk index alone.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// Validate checks the chunk's identity fields.
func (c Chunk) Validate() error {
	if c.DocumentID == "" {
		return fmt.Errorf("%w: document ID required", ErrInvalidChunk)
	}
	if c.Index < 0 {
		return fmt.Errorf("%w: negative chunk index %d", ErrInvalidChunk, c.Index)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: chunk ID required", ErrInvalidChunk)
	}
	return nil
}

// Match is a chunk returned by a similarity-search backend together with its
// similarity score.
type Match struct {
	Chunk Chunk
	Score float32
}

// Store holds chunks and their embeddings, keyed by chunk identity.
type Store interface {
	// Put upserts a chunk. Writing the same chunk ID again replaces the
	// stored chunk and embedding.
	Put(ctx context.Context, chunk Chunk) error

	// GetByDocument returns all chunks of a document ordered by chunk index.
	// A document with no chunks yields an empty slice, not an error.
	GetByDocument(ctx context.Context, documentID string) ([]Chunk, error)

	// GetEmbedding returns the embedding stored for a chunk. The second
	// return value reports whether an embedding exists; its absence is a
	// valid state and not an error.
	GetEmbedding(ctx context.Context, chunkID string) ([]float32, bool, error)

	// Close releases resources held by the store.
	Close() error
}

// Matcher is implemented by backends that can rank chunks server-side.
//
// MatchChunks returns up to k chunks of the document ordered by similarity
// to the query embedding, highest score first.
type Matcher interface {
	MatchChunks(ctx context.Context, queryEmbedding []float32, documentID string, k int) ([]Match, error)
}
