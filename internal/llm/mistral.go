package llm

import "time"

// MistralConfig configures the Mistral chat binding. Mistral exposes an
// OpenAI-compatible chat completions API.
type MistralConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *MistralConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.mistral.ai/v1"
	}
	if c.Model == "" {
		c.Model = "mistral-small-latest"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// NewMistral returns the Mistral chat provider.
func NewMistral(config MistralConfig) Provider {
	config.ApplyDefaults()
	return newChatCompat(ProviderMistral, config.BaseURL, config.Model, config.APIKey, config.Timeout)
}
