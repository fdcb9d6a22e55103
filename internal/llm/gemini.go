package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiConfig configures the Google Gemini binding.
type GeminiConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *GeminiConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Gemini talks to the Google generateContent API. Gemini uses "model" for
// assistant turns and carries system instructions in a dedicated field.
type Gemini struct {
	config GeminiConfig
	client *http.Client
}

// NewGemini returns the Gemini chat provider.
func NewGemini(config GeminiConfig) *Gemini {
	config.ApplyDefaults()
	return &Gemini{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Available() bool { return g.config.APIKey != "" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if !g.Available() {
		return "", fmt.Errorf("%w: gemini API key not configured", ErrUnavailable)
	}

	body := geminiRequest{
		Contents: make([]geminiContent, 0, len(req.Messages)),
		GenerationConfig: geminiGenConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, turn := range req.Messages {
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.config.BaseURL, g.config.Model, url.QueryEscape(g.config.APIKey))

	var resp geminiResponse
	if err := postJSON(ctx, g.client, endpoint, nil, body, &resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w: no candidates", ErrGenerationFailed)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini: %w: empty candidate", ErrGenerationFailed)
	}
	return sb.String(), nil
}

// Probe lists models to confirm the credential works.
func (g *Gemini) Probe(ctx context.Context) error {
	if !g.Available() {
		return fmt.Errorf("%w: gemini API key not configured", ErrUnavailable)
	}
	endpoint := fmt.Sprintf("%s/models?key=%s", g.config.BaseURL, url.QueryEscape(g.config.APIKey))
	if err := getStatus(ctx, g.client, endpoint, nil); err != nil {
		return fmt.Errorf("gemini probe: %w", err)
	}
	return nil
}
