package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const anthropicVersion = "2023-06-01"

// ClaudeConfig configures the Anthropic Claude binding.
type ClaudeConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *ClaudeConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.anthropic.com/v1"
	}
	if c.Model == "" {
		c.Model = "claude-3-5-haiku-latest"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Claude talks to the Anthropic messages API. Unlike the OpenAI-style
// vendors, system instructions travel in a dedicated request field rather
// than as a leading message.
type Claude struct {
	config ClaudeConfig
	client *http.Client
}

// NewClaude returns the Claude chat provider.
func NewClaude(config ClaudeConfig) *Claude {
	config.ApplyDefaults()
	return &Claude{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (c *Claude) Name() string { return ProviderClaude }

func (c *Claude) Available() bool { return c.config.APIKey != "" }

type claudeRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Claude) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("%w: claude API key not configured", ErrUnavailable)
	}

	messages := make([]chatMessage, 0, len(req.Messages))
	for _, turn := range req.Messages {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}

	var resp claudeResponse
	err := postJSON(ctx, c.client, c.config.BaseURL+"/messages", c.headers(), claudeRequest{
		Model:       c.config.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    messages,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("claude: %w: no text content", ErrGenerationFailed)
}

// Probe lists models to confirm the credential works.
func (c *Claude) Probe(ctx context.Context) error {
	if !c.Available() {
		return fmt.Errorf("%w: claude API key not configured", ErrUnavailable)
	}
	if err := getStatus(ctx, c.client, c.config.BaseURL+"/models", c.headers()); err != nil {
		return fmt.Errorf("claude probe: %w", err)
	}
	return nil
}

func (c *Claude) headers() map[string]string {
	return map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": anthropicVersion,
	}
}
