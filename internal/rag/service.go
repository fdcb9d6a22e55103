package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunker"
	"github.com/fyrsmithlabs/ragd/internal/chunkstore"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/retriever"
)

var (
	// ErrInvalidConfig indicates the service configuration failed
	// validation.
	ErrInvalidConfig = errors.New("invalid rag configuration")
	// ErrEmptyDocument indicates an ingestion request with no text.
	ErrEmptyDocument = errors.New("document text is empty")
	// ErrNoRelevantContent indicates a question about a document that has
	// no stored chunks at all.
	ErrNoRelevantContent = errors.New("no relevant content found in document")
)

// Config controls the orchestrator.
type Config struct {
	// Chunking controls document splitting.
	Chunking chunker.Config `koanf:"chunking"`
	// TopK is how many chunks ground each answer.
	TopK int `koanf:"top_k"`
	// FallbackContextChars bounds the context sample used when retrieval
	// finds no scoring match but the document has chunks.
	FallbackContextChars int `koanf:"fallback_context_chars"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.Chunking.ApplyDefaults()
	if c.TopK <= 0 {
		c.TopK = 3
	}
	if c.FallbackContextChars <= 0 {
		c.FallbackContextChars = 500
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	}
	if c.FallbackContextChars <= 0 {
		return fmt.Errorf("%w: fallback_context_chars must be positive", ErrInvalidConfig)
	}
	return nil
}

// Service orchestrates ingestion and question answering.
type Service struct {
	config    Config
	store     chunkstore.Store
	embedder  embeddings.Embedder
	retriever *retriever.Retriever
	registry  *llm.Registry
	logger    *zap.Logger
}

// NewService builds the orchestrator. The embedder may be nil, in which case
// chunks are stored without embeddings and retrieval falls back to keyword
// matching.
func NewService(config Config, store chunkstore.Store, embedder embeddings.Embedder, registry *llm.Registry, logger *zap.Logger) (*Service, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: provider registry is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// An unconfigured embedder is treated as absent so retrieval degrades
	// to keyword matching instead of failing on every query.
	if embedder != nil && !embedder.Available() {
		embedder = nil
	}
	return &Service{
		config:    config,
		store:     store,
		embedder:  embedder,
		retriever: retriever.New(store, embedder, logger),
		registry:  registry,
		logger:    logger,
	}, nil
}

// RetrievalMode reports whether retrieval runs on embeddings or keywords.
func (s *Service) RetrievalMode() retriever.Mode { return s.retriever.Mode() }

// IngestResult describes a completed document ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	Embedded   bool   `json:"embedded"`
}

// ProcessDocument splits a document into chunks, embeds them when possible,
// and stores them under deterministic IDs. Re-processing the same document
// ID overwrites its chunks. Any chunk failing to store aborts the whole
// ingestion.
func (s *Service) ProcessDocument(ctx context.Context, documentID, text string) (*IngestResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document ID is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document %s", ErrEmptyDocument, documentID)
	}

	texts, err := chunker.Split(text, s.config.Chunking)
	if err != nil {
		return nil, fmt.Errorf("chunk document %s: %w", documentID, err)
	}

	var vectors [][]float32
	embedded := false
	if s.embedder != nil && s.embedder.Available() {
		vectors, err = s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed document %s: %w", documentID, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed document %s: %w: got %d vectors for %d chunks",
				documentID, embeddings.ErrEmbeddingFailed, len(vectors), len(texts))
		}
		embedded = true
	} else {
		s.logger.Warn("no embedder available, storing chunks without embeddings",
			zap.String("document_id", documentID))
	}

	for i, chunkText := range texts {
		chunk := chunkstore.Chunk{
			ID:         chunkstore.ChunkID(documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       chunkText,
		}
		if embedded {
			chunk.Embedding = vectors[i]
		}
		if err := s.store.Put(ctx, chunk); err != nil {
			return nil, fmt.Errorf("store chunk %s: %w", chunk.ID, err)
		}
	}

	s.logger.Info("document processed",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(texts)),
		zap.Bool("embedded", embedded))

	return &IngestResult{DocumentID: documentID, ChunkCount: len(texts), Embedded: embedded}, nil
}

// Answer is a generated answer with its provenance.
type Answer struct {
	Answer       string             `json:"answer"`
	ModelUsed    string             `json:"model_used"`
	SourceChunks []retriever.Result `json:"source_chunks"`
	// Fallback is true when retrieval found no scoring chunk and the
	// answer was grounded in a leading sample of the document instead.
	Fallback bool `json:"fallback_context"`
}

// AnswerQuestion answers a question about one document. Preferred names the
// provider to try first; the remaining configured providers follow in fixed
// priority order. History carries prior conversation turns, oldest first.
func (s *Service) AnswerQuestion(ctx context.Context, question, documentID, preferred string, history []llm.Turn) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document ID is required", ErrInvalidConfig)
	}

	docContext, sources, fallback, err := s.buildContext(ctx, question, documentID)
	if err != nil {
		return nil, err
	}

	providers := s.registry.PreferenceOrder(preferred)
	attempted := make([]string, 0, len(providers))
	var lastErr error
	for _, p := range providers {
		attempted = append(attempted, p.Name())
		answer, err := llm.GenerateAnswer(ctx, p, question, docContext, history)
		if err != nil {
			lastErr = err
			s.logger.Warn("provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("document_id", documentID),
				zap.Error(err))
			continue
		}
		s.logger.Info("question answered",
			zap.String("provider", p.Name()),
			zap.String("document_id", documentID),
			zap.Int("source_chunks", len(sources)),
			zap.Bool("fallback_context", fallback))
		return &Answer{
			Answer:       answer,
			ModelUsed:    p.Name(),
			SourceChunks: sources,
			Fallback:     fallback,
		}, nil
	}
	return nil, &llm.AllProvidersError{Attempted: attempted, Last: lastErr}
}

// buildContext retrieves the grounding context for a question. When
// retrieval scores nothing, the document's first chunk supplies a bounded
// sample instead; a document with no chunks at all is ErrNoRelevantContent.
func (s *Service) buildContext(ctx context.Context, question, documentID string) (string, []retriever.Result, bool, error) {
	results, err := s.retriever.Retrieve(ctx, question, documentID, s.config.TopK)
	if err != nil {
		return "", nil, false, fmt.Errorf("retrieve context for %s: %w", documentID, err)
	}
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = r.Text
		}
		return strings.Join(parts, "\n\n"), results, false, nil
	}

	chunks, err := s.store.GetByDocument(ctx, documentID)
	if err != nil {
		return "", nil, false, fmt.Errorf("load chunks for %s: %w", documentID, err)
	}
	if len(chunks) == 0 {
		return "", nil, false, fmt.Errorf("%w: document %s", ErrNoRelevantContent, documentID)
	}

	sample := chunks[0].Text
	if len(sample) > s.config.FallbackContextChars {
		// Back off to a rune boundary so the sample is valid UTF-8.
		cut := s.config.FallbackContextChars
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}
	s.logger.Debug("no scoring chunks, using document sample as context",
		zap.String("document_id", documentID),
		zap.Int("sample_chars", len(sample)))
	return sample, nil, true, nil
}
