// Package embeddings generates vector embeddings for text chunks and queries
// via an OpenAI-compatible HTTP embedding service.
//
// The package exposes the Embedder interface consumed by the chunk store and
// retriever. A missing API key is a first-class unavailable state, reported
// with ErrUnavailable before any network call, so callers can degrade to
// keyword retrieval instead of treating it as a transport failure.
package embeddings
