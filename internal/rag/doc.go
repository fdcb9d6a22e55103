// Package rag wires the chunker, embedder, chunk store, retriever, and
// answer providers into the document question-answering pipeline.
//
// Ingestion splits a document into overlapping chunks, embeds them when an
// embedder is configured, and upserts them under deterministic chunk IDs so
// re-ingesting a document replaces its chunks in place. Question answering
// retrieves the best-matching chunks, assembles their text into a grounding
// context, and walks the provider fallback chain until one produces an
// answer.
package rag
