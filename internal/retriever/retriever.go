// Package retriever ranks stored document chunks against a query.
//
// Two retrieval modes exist and their scores are not comparable:
//
//   - Vector mode (an embedder is configured): cosine similarity in [-1, 1]
//     between the query embedding and each chunk embedding. When the chunk
//     store supports server-side matching, that is tried first; any failure
//     falls back to an in-process scan rather than failing the request.
//   - Keyword mode (no embedder): the number of distinct lower-cased query
//     words occurring as substrings of the lower-cased chunk text.
//
// In both modes results are ordered by score descending with ties broken by
// chunk index ascending, and a document without chunks yields an empty
// result, not an error.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunkstore"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
)

// Mode identifies how a retrieval result set was scored.
type Mode string

const (
	// ModeVector scores by cosine similarity of embeddings.
	ModeVector Mode = "vector"
	// ModeKeyword scores by query-word substring counts.
	ModeKeyword Mode = "keyword"
)

// Result is a retrieved chunk with its relevance score.
//
// Score semantics depend on the mode returned alongside the results; scores
// from different modes must not be compared.
type Result struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"chunk_text"`
	Score      float64 `json:"score"`
}

// Retriever ranks chunks of a document for a query.
type Retriever struct {
	store    chunkstore.Store
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// New creates a Retriever. A nil embedder selects keyword mode.
func New(store chunkstore.Store, embedder embeddings.Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Mode reports the retrieval mode this retriever operates in.
func (r *Retriever) Mode() Mode {
	if r.embedder != nil {
		return ModeVector
	}
	return ModeKeyword
}

// Retrieve returns up to topK chunks of the document ranked by relevance to
// the query, highest score first.
func (r *Retriever) Retrieve(ctx context.Context, query, documentID string, topK int) ([]Result, error) {
	if topK <= 0 {
		return []Result{}, nil
	}

	if r.embedder == nil {
		return r.retrieveKeyword(ctx, query, documentID, topK)
	}
	return r.retrieveVector(ctx, query, documentID, topK)
}

// retrieveVector embeds the query and ranks embedded chunks by cosine
// similarity. A failing server-side match degrades to the local scan.
func (r *Retriever) retrieveVector(ctx context.Context, query, documentID string, topK int) ([]Result, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	if matcher, ok := r.store.(chunkstore.Matcher); ok {
		matches, err := matcher.MatchChunks(ctx, queryEmbedding, documentID, topK)
		if err == nil {
			return matchResults(matches), nil
		}
		r.logger.Warn("server-side chunk match failed, falling back to local scan",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
	}

	chunks, err := r.store.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading chunks for %s: %w", documentID, err)
	}

	results := make([]Result, 0, len(chunks))
	for _, chunk := range chunks {
		embedding := chunk.Embedding
		if embedding == nil {
			var ok bool
			embedding, ok, err = r.store.GetEmbedding(ctx, chunk.ID)
			if err != nil {
				return nil, fmt.Errorf("loading embedding for %s: %w", chunk.ID, err)
			}
			if !ok {
				// Chunks without embeddings do not participate in
				// vector ranking.
				continue
			}
		}
		results = append(results, Result{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
			Score:      Cosine(queryEmbedding, embedding),
		})
	}

	return topResults(results, topK), nil
}

// retrieveKeyword scores chunks by the number of distinct query words that
// occur as substrings of the lower-cased chunk text.
func (r *Retriever) retrieveKeyword(ctx context.Context, query, documentID string, topK int) ([]Result, error) {
	chunks, err := r.store.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading chunks for %s: %w", documentID, err)
	}

	queryWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(query)) {
		queryWords[w] = struct{}{}
	}

	results := make([]Result, 0, len(chunks))
	for _, chunk := range chunks {
		text := strings.ToLower(chunk.Text)
		score := 0
		for w := range queryWords {
			if strings.Contains(text, w) {
				score++
			}
		}
		results = append(results, Result{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
			Score:      float64(score),
		})
	}

	return topResults(results, topK), nil
}

// topResults orders results by score descending, ties by chunk index
// ascending, and truncates to topK. Input must already be index-ordered for
// the stable sort to preserve the tiebreak.
func topResults(results []Result, topK int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func matchResults(matches []chunkstore.Match) []Result {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			ChunkID:    m.Chunk.ID,
			DocumentID: m.Chunk.DocumentID,
			ChunkIndex: m.Chunk.Index,
			Text:       m.Chunk.Text,
			Score:      float64(m.Score),
		})
	}
	return results
}
