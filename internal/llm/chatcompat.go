package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// OpenAI-style chat completion wire types, shared by the OpenAI and Mistral
// bindings.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatCompat implements Provider for vendors exposing an OpenAI-compatible
// /chat/completions endpoint.
type chatCompat struct {
	name    string
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func newChatCompat(name, baseURL, model, apiKey string, timeout time.Duration) *chatCompat {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &chatCompat{
		name:    name,
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *chatCompat) Name() string { return c.name }

func (c *chatCompat) Available() bool { return c.apiKey != "" }

func (c *chatCompat) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("%w: %s API key not configured", ErrUnavailable, c.name)
	}

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, turn := range req.Messages {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}

	var resp chatCompletionResponse
	err := postJSON(ctx, c.client, c.baseURL+"/chat/completions", c.authHeaders(), chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w: empty completion", c.name, ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

// Probe lists models to confirm the credential works and the API is
// reachable.
func (c *chatCompat) Probe(ctx context.Context) error {
	if !c.Available() {
		return fmt.Errorf("%w: %s API key not configured", ErrUnavailable, c.name)
	}
	if err := getStatus(ctx, c.client, c.baseURL+"/models", c.authHeaders()); err != nil {
		return fmt.Errorf("%s probe: %w", c.name, err)
	}
	return nil
}

func (c *chatCompat) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}
