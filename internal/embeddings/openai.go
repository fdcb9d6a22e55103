package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the OpenAI API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the default embedding model.
	DefaultModel = "text-embedding-ada-002"

	// defaultTimeout bounds each embedding call so requests cannot hang
	// indefinitely on a stalled upstream.
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// BaseURL is the base URL for the embedding API.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model to use.
	Model string `koanf:"model"`

	// APIKey is the API key. When empty the service reports ErrUnavailable.
	APIKey string `koanf:"api_key"`

	// Timeout bounds each HTTP call. Zero means defaultTimeout.
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Service generates embeddings via the OpenAI embeddings endpoint.
type Service struct {
	config  Config
	client  *http.Client
	logger  *zap.Logger
	metrics *Metrics
}

// NewService creates a new embedding service with the given configuration.
func NewService(config Config, logger *zap.Logger) (*Service, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  logger,
		metrics: NewMetrics(logger),
	}, nil
}

// Available reports whether the service has a credential configured.
func (s *Service) Available() bool {
	return s.config.APIKey != ""
}

// embedRequest is the request body for the embeddings endpoint.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response body from the embeddings endpoint.
type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EmbedDocuments generates embeddings for multiple texts.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return s.embed(ctx, texts, "batch_embed")
}

func (s *Service) embed(ctx context.Context, texts []string, operation string) (vectors [][]float32, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordGeneration(ctx, s.config.Model, operation, time.Since(start), len(texts), err)
	}()

	if !s.Available() {
		return nil, fmt.Errorf("%w: API key not configured", ErrUnavailable)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	body, err := json.Marshal(embedRequest{
		Model: s.config.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingFailed, len(texts), len(decoded.Data))
	}

	// The API may return data entries out of input order; the index field
	// is authoritative.
	vectors = make([][]float32, len(texts))
	for _, d := range decoded.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrEmbeddingFailed, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	s.logger.Debug("generated embeddings",
		zap.String("model", s.config.Model),
		zap.Int("count", len(vectors)),
	)

	return vectors, nil
}

// EmbedQuery generates an embedding for a single query.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}

	vectors, err := s.embed(ctx, []string{text}, "embed")
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrEmbeddingFailed)
	}
	return vectors[0], nil
}
