package chunkstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/embeddings"
)

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty keeps the store
	// in memory only.
	Path string `koanf:"path"`

	// Compress enables gzip compression for stored data.
	Compress bool `koanf:"compress"`

	// Collection is the chromem collection name.
	Collection string `koanf:"collection"`
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "ragd_chunks"
	}
}

// ChromemStore implements Store and Matcher on chromem-go, an embeddable
// vector database with no external service dependency.
//
// Every stored chunk carries an embedding: chunks ingested without one are
// embedded through the configured embedder at insert time, so this backend
// requires an embedder and never serves keyword-mode documents.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	config     ChromemConfig
	logger     *zap.Logger
}

// NewChromemStore creates a ChromemStore with the given configuration.
func NewChromemStore(config ChromemConfig, embedder embeddings.Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()

	var (
		db  *chromem.DB
		err error
	)
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		path, pathErr := expandPath(config.Path)
		if pathErr != nil {
			return nil, fmt.Errorf("expanding path: %w", pathErr)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", path, err)
		}
		db, err = chromem.NewPersistentDB(path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(config.Collection, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", config.Collection, err)
	}

	return &ChromemStore{
		db:         db,
		collection: collection,
		embedder:   embedder,
		config:     config,
		logger:     logger,
	}, nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// Put upserts a chunk. A chunk without an embedding is embedded through the
// store's embedder before insertion.
func (s *ChromemStore) Put(ctx context.Context, chunk Chunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}

	doc := chromem.Document{
		ID:      chunk.ID,
		Content: chunk.Text,
		Metadata: map[string]string{
			"document_id": chunk.DocumentID,
			"chunk_index": strconv.Itoa(chunk.Index),
		},
		Embedding: chunk.Embedding,
	}

	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("adding chunk %s: %w", chunk.ID, err)
	}

	s.logger.Debug("stored chunk in chromem",
		zap.String("chunk_id", chunk.ID),
		zap.String("document_id", chunk.DocumentID),
	)
	return nil
}

// GetByDocument walks the document's deterministic chunk IDs starting at
// index 0 and stops at the first missing one. Chunk indexes are contiguous
// per document, so this returns every stored chunk in order.
func (s *ChromemStore) GetByDocument(ctx context.Context, documentID string) ([]Chunk, error) {
	var chunks []Chunk
	for i := 0; ; i++ {
		doc, err := s.collection.GetByID(ctx, ChunkID(documentID, i))
		if err != nil {
			break
		}
		chunks = append(chunks, chromemChunk(doc))
	}
	if chunks == nil {
		chunks = []Chunk{}
	}
	return chunks, nil
}

// GetEmbedding returns the embedding stored for a chunk.
func (s *ChromemStore) GetEmbedding(ctx context.Context, chunkID string) ([]float32, bool, error) {
	doc, err := s.collection.GetByID(ctx, chunkID)
	if err != nil {
		return nil, false, nil
	}
	return doc.Embedding, doc.Embedding != nil, nil
}

// MatchChunks ranks the document's chunks by similarity to the query
// embedding using chromem's native search.
func (s *ChromemStore) MatchChunks(ctx context.Context, queryEmbedding []float32, documentID string, k int) ([]Match, error) {
	// chromem rejects nResults larger than the candidate set, so cap k at
	// the document's chunk count first.
	chunks, err := s.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return []Match{}, nil
	}
	if k > len(chunks) {
		k = len(chunks)
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, k, map[string]string{"document_id": documentID}, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		index, _ := strconv.Atoi(r.Metadata["chunk_index"])
		matches = append(matches, Match{
			Chunk: Chunk{
				ID:         r.ID,
				DocumentID: r.Metadata["document_id"],
				Index:      index,
				Text:       r.Content,
				Embedding:  r.Embedding,
			},
			Score: r.Similarity,
		})
	}
	return matches, nil
}

// Close is a no-op: chromem persists on write.
func (s *ChromemStore) Close() error {
	return nil
}

func chromemChunk(doc chromem.Document) Chunk {
	index, _ := strconv.Atoi(doc.Metadata["chunk_index"])
	return Chunk{
		ID:         doc.ID,
		DocumentID: doc.Metadata["document_id"],
		Index:      index,
		Text:       doc.Content,
		Embedding:  doc.Embedding,
	}
}
