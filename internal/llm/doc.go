// Package llm binds answer-generation providers (Gemini, OpenAI, Claude,
// Mistral) behind one capability interface.
//
// Each binding talks to its vendor HTTP API directly and reports two failure
// states the orchestrator treats differently: ErrUnavailable when no
// credential is configured (checked before any network call) and
// ErrGenerationFailed when a call executed but failed or returned unusable
// data. Providers never retry internally and never return an empty answer on
// success.
//
// The Registry tracks which providers are configured and alive and produces
// the fallback preference order used by the RAG orchestrator.
package llm
