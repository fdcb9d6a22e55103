package chunkstore

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore is the in-process chunk store.
//
// Contents live for the process lifetime. Reads and writes are guarded by a
// RWMutex; concurrent ingestion of distinct documents is safe, while
// re-ingesting the same document concurrently is last-writer-wins and must be
// serialized by the caller.
type MemoryStore struct {
	mu         sync.RWMutex
	chunks     map[string]Chunk    // chunk ID -> chunk (embedding excluded)
	embeddings map[string][]float32 // chunk ID -> embedding
	byDocument map[string]map[int]string // document ID -> index -> chunk ID

	logger *zap.Logger
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		chunks:     make(map[string]Chunk),
		embeddings: make(map[string][]float32),
		byDocument: make(map[string]map[int]string),
		logger:     logger,
	}
}

// Put upserts a chunk and, when present, its embedding.
func (s *MemoryStore) Put(_ context.Context, chunk Chunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	embedding := chunk.Embedding
	chunk.Embedding = nil
	s.chunks[chunk.ID] = chunk

	if embedding != nil {
		s.embeddings[chunk.ID] = embedding
	} else {
		delete(s.embeddings, chunk.ID)
	}

	indexes, ok := s.byDocument[chunk.DocumentID]
	if !ok {
		indexes = make(map[int]string)
		s.byDocument[chunk.DocumentID] = indexes
	}
	indexes[chunk.Index] = chunk.ID

	return nil
}

// GetByDocument returns the document's chunks ordered by chunk index.
func (s *MemoryStore) GetByDocument(_ context.Context, documentID string) ([]Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indexes := s.byDocument[documentID]
	chunks := make([]Chunk, 0, len(indexes))
	for _, id := range indexes {
		chunks = append(chunks, s.chunks[id])
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })

	return chunks, nil
}

// GetEmbedding returns the embedding for a chunk if one was stored.
func (s *MemoryStore) GetEmbedding(_ context.Context, chunkID string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	embedding, ok := s.embeddings[chunkID]
	return embedding, ok, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
