package chunkstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// scrollPageSize bounds a single scroll page when listing a document's chunks.
const scrollPageSize = 256

// QdrantConfig holds configuration for the Qdrant gRPC backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string `koanf:"host"`

	// Port is the Qdrant gRPC port (not the HTTP REST port).
	Port int `koanf:"port"`

	// Collection is the collection holding document chunks.
	Collection string `koanf:"collection"`

	// VectorSize is the embedding dimensionality. Must match the embedder.
	VectorSize uint64 `koanf:"vector_size"`

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool `koanf:"use_tls"`

	// MaxMessageSize is the maximum gRPC message size in bytes.
	MaxMessageSize int `koanf:"max_message_size"`
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "ragd_chunks"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 1536
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection name required", ErrInvalidConfig)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

// QdrantStore implements Store and Matcher against an external Qdrant
// instance over gRPC. Chunk ranking happens server-side through MatchChunks.
//
// Qdrant point IDs must be UUIDs; the store derives a deterministic UUID
// from the chunk identity so that re-ingestion upserts in place.
type QdrantStore struct {
	client *qdrant.Client
	config QdrantConfig
	logger *zap.Logger
}

// NewQdrantStore connects to Qdrant and ensures the chunk collection exists.
func NewQdrantStore(ctx context.Context, config QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &QdrantStore{client: client, config: config, logger: logger}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(healthCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if err := s.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return s, nil
}

// ensureCollection creates the chunk collection if it does not exist yet.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.config.Collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.config.Collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.config.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.config.Collection, err)
	}

	s.logger.Info("created qdrant collection",
		zap.String("collection", s.config.Collection),
		zap.Uint64("vector_size", s.config.VectorSize),
	)
	return nil
}

// pointID derives the deterministic Qdrant point UUID for a chunk identity.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

// documentFilter matches all points belonging to one document.
func documentFilter(documentID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "document_id",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keyword{Keyword: documentID},
						},
					},
				},
			},
		},
	}
}

// Put upserts a chunk. Qdrant stores vectors only, so a chunk without an
// embedding is rejected with ErrEmbeddingRequired.
func (s *QdrantStore) Put(ctx context.Context, chunk Chunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}
	if chunk.Embedding == nil {
		return fmt.Errorf("%w: chunk %s has no embedding", ErrEmbeddingRequired, chunk.ID)
	}

	payload := map[string]*qdrant.Value{
		"chunk_id":    {Kind: &qdrant.Value_StringValue{StringValue: chunk.ID}},
		"document_id": {Kind: &qdrant.Value_StringValue{StringValue: chunk.DocumentID}},
		"chunk_index": {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(chunk.Index)}},
		"text":        {Kind: &qdrant.Value_StringValue{StringValue: chunk.Text}},
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(pointID(chunk.ID)),
				Vectors: qdrant.NewVectors(chunk.Embedding...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upserting chunk %s: %w", chunk.ID, err)
	}

	s.logger.Debug("stored chunk in qdrant",
		zap.String("chunk_id", chunk.ID),
		zap.String("document_id", chunk.DocumentID),
	)
	return nil
}

// GetByDocument scrolls all points of the document and orders them by index.
func (s *QdrantStore) GetByDocument(ctx context.Context, documentID string) ([]Chunk, error) {
	chunks := []Chunk{}
	var offset *qdrant.PointId

	for {
		points, nextOffset, err := s.client.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: s.config.Collection,
			Filter:         documentFilter(documentID),
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scrolling document %s: %w", documentID, err)
		}

		for _, p := range points {
			chunks = append(chunks, retrievedChunk(p))
		}

		if nextOffset == nil || len(points) == 0 {
			break
		}
		offset = nextOffset
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// GetEmbedding fetches the stored vector for a chunk.
func (s *QdrantStore) GetEmbedding(ctx context.Context, chunkID string) ([]float32, bool, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.config.Collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(pointID(chunkID))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("getting chunk %s: %w", chunkID, err)
	}
	if len(points) == 0 {
		return nil, false, nil
	}

	vec := vectorData(points[0].GetVectors())
	return vec, vec != nil, nil
}

// MatchChunks ranks the document's chunks server-side by cosine similarity.
func (s *QdrantStore) MatchChunks(ctx context.Context, queryEmbedding []float32, documentID string, k int) ([]Match, error) {
	if k <= 0 {
		return []Match{}, nil
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.Collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         documentFilter(documentID),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", documentID, err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, Match{
			Chunk: scoredChunk(p),
			Score: p.GetScore(),
		})
	}
	return matches, nil
}

// Close closes the Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func retrievedChunk(p *qdrant.RetrievedPoint) Chunk {
	c := payloadChunk(p.GetPayload())
	c.Embedding = vectorData(p.GetVectors())
	return c
}

func scoredChunk(p *qdrant.ScoredPoint) Chunk {
	return payloadChunk(p.GetPayload())
}

func payloadChunk(payload map[string]*qdrant.Value) Chunk {
	var c Chunk
	if v, ok := payload["chunk_id"]; ok {
		c.ID = v.GetStringValue()
	}
	if v, ok := payload["document_id"]; ok {
		c.DocumentID = v.GetStringValue()
	}
	if v, ok := payload["chunk_index"]; ok {
		c.Index = int(v.GetIntegerValue())
	}
	if v, ok := payload["text"]; ok {
		c.Text = v.GetStringValue()
	}
	return c
}

func vectorData(vectors *qdrant.VectorsOutput) []float32 {
	if vectors == nil {
		return nil
	}
	vec := vectors.GetVector()
	if vec == nil {
		return nil
	}
	if dense := vec.GetDense(); dense != nil {
		return dense.GetData()
	}
	return vec.GetData()
}
