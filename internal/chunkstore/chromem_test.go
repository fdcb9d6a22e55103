package chunkstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisEmbedder maps texts to fixed unit vectors so similarity ordering in
// tests is fully deterministic.
type axisEmbedder struct {
	vectors map[string][]float32
}

func (e *axisEmbedder) Available() bool { return true }

func (e *axisEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *axisEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func newChromemTestStore(t *testing.T, embedder *axisEmbedder) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(ChromemConfig{}, embedder, nil)
	require.NoError(t, err)
	return store
}

func TestNewChromemStore_RequiresEmbedder(t *testing.T) {
	_, err := NewChromemStore(ChromemConfig{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestChromemStore_PutAndGetByDocument(t *testing.T) {
	embedder := &axisEmbedder{vectors: map[string][]float32{}}
	store := newChromemTestStore(t, embedder)
	ctx := t.Context()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, Chunk{
			ID:         ChunkID("doc1", i),
			DocumentID: "doc1",
			Index:      i,
			Text:       fmt.Sprintf("chunk %d", i),
			Embedding:  []float32{float32(i + 1), 1, 0},
		}))
	}

	chunks, err := store.GetByDocument(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "doc1", c.DocumentID)
		assert.Equal(t, fmt.Sprintf("chunk %d", i), c.Text)
		assert.NotNil(t, c.Embedding)
	}

	// An unrelated document stays empty.
	chunks, err = store.GetByDocument(ctx, "doc2")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChromemStore_GetEmbedding(t *testing.T) {
	embedder := &axisEmbedder{vectors: map[string][]float32{}}
	store := newChromemTestStore(t, embedder)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, Chunk{
		ID: ChunkID("doc1", 0), DocumentID: "doc1", Index: 0, Text: "t", Embedding: []float32{0, 1, 0},
	}))

	vec, ok, err := store.GetEmbedding(ctx, ChunkID("doc1", 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, vec, 3)

	_, ok, err = store.GetEmbedding(ctx, "missing_chunk_0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChromemStore_MatchChunks(t *testing.T) {
	embedder := &axisEmbedder{vectors: map[string][]float32{}}
	store := newChromemTestStore(t, embedder)
	ctx := t.Context()

	// Chunk 1 points along the query axis, chunk 0 is orthogonal.
	require.NoError(t, store.Put(ctx, Chunk{
		ID: ChunkID("doc1", 0), DocumentID: "doc1", Index: 0, Text: "background section",
		Embedding: []float32{1, 0, 0},
	}))
	require.NoError(t, store.Put(ctx, Chunk{
		ID: ChunkID("doc1", 1), DocumentID: "doc1", Index: 1, Text: "results section",
		Embedding: []float32{0, 1, 0},
	}))

	matches, err := store.MatchChunks(ctx, []float32{0, 1, 0}, "doc1", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, ChunkID("doc1", 1), matches[0].Chunk.ID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestChromemStore_MatchChunks_CapsKAtChunkCount(t *testing.T) {
	embedder := &axisEmbedder{vectors: map[string][]float32{}}
	store := newChromemTestStore(t, embedder)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, Chunk{
		ID: ChunkID("doc1", 0), DocumentID: "doc1", Index: 0, Text: "only chunk",
		Embedding: []float32{1, 0, 0},
	}))

	matches, err := store.MatchChunks(ctx, []float32{1, 0, 0}, "doc1", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = store.MatchChunks(ctx, []float32{1, 0, 0}, "empty-doc", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
