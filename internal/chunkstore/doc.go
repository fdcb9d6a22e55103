// Package chunkstore persists document chunks and their embeddings.
//
// Chunks are keyed by their deterministic identity "{document_id}_chunk_{index}",
// which makes Put an idempotent upsert: re-ingesting a document overwrites its
// chunks in place. Three interchangeable backends implement the Store interface:
//
//   - MemoryStore: process-lifetime map, usable with or without embeddings.
//     This is the fallback when no durable backend is configured and the only
//     backend that holds chunks lacking embeddings (keyword retrieval mode).
//   - ChromemStore: embedded chromem-go database with disk persistence.
//   - QdrantStore: external Qdrant reached over gRPC.
//
// The durable backends additionally implement Matcher, a server-side
// similarity-search call the retriever prefers over scanning chunks locally.
// Both require an embedding for every chunk; the factory only selects them
// when an embedder is configured.
package chunkstore
