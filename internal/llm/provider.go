package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by all provider bindings.
var (
	// ErrInvalidConfig indicates that a provider configuration failed
	// validation.
	ErrInvalidConfig = errors.New("invalid provider configuration")
	// ErrUnavailable indicates that a provider has no credential configured
	// or failed a liveness probe. Nothing was sent to the vendor.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrGenerationFailed indicates that a provider call executed but the
	// request failed, the response was malformed, or the model produced no
	// text.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrUnknownProvider indicates a provider name the registry does not
	// hold.
	ErrUnknownProvider = errors.New("unknown provider")
)

// AllProvidersError reports that every provider in a fallback chain either
// was unavailable or failed. Last carries the final provider's error when at
// least one was attempted.
type AllProvidersError struct {
	Attempted []string
	Last      error
}

func (e *AllProvidersError) Error() string {
	if len(e.Attempted) == 0 {
		return "no providers available"
	}
	return fmt.Sprintf("all providers failed (tried %s): %v",
		strings.Join(e.Attempted, ", "), e.Last)
}

func (e *AllProvidersError) Unwrap() error { return e.Last }

// Provider names as they appear in configuration and API requests.
const (
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderClaude  = "claude"
	ProviderMistral = "mistral"
)

// FallbackOrder is the fixed provider priority used when building a fallback
// chain. A requested provider is tried first; the remaining providers follow
// in this order.
var FallbackOrder = []string{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderMistral}

// Role values for chat turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange in a conversation, oldest first.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral chat completion request. System carries
// instructions separately because some vendors (Claude, Gemini) take them
// out of band rather than as a leading message.
type ChatRequest struct {
	System      string
	Messages    []Turn
	Temperature float64
	MaxTokens   int
}

// Provider is a single answer-generation backend.
type Provider interface {
	// Name returns the provider's registry name, e.g. "gemini".
	Name() string
	// Available reports whether the provider is configured with a
	// credential. It performs no network I/O.
	Available() bool
	// Chat runs one chat completion and returns the model's text.
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// Prober is implemented by providers that can verify vendor reachability
// with a cheap API call. The registry uses it at startup; a probe failure
// marks the provider dead until the process restarts.
type Prober interface {
	Probe(ctx context.Context) error
}
