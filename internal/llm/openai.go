package llm

import "time"

// OpenAIConfig configures the OpenAI chat binding.
type OpenAIConfig struct {
	// BaseURL is the API root. Defaults to the public OpenAI endpoint.
	BaseURL string `koanf:"base_url"`
	// Model is the chat model name.
	Model string `koanf:"model"`
	// APIKey authenticates requests. An empty key marks the provider
	// unavailable.
	APIKey string `koanf:"api_key"`
	// Timeout bounds each HTTP request.
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *OpenAIConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// NewOpenAI returns the OpenAI chat provider.
func NewOpenAI(config OpenAIConfig) Provider {
	config.ApplyDefaults()
	return newChatCompat(ProviderOpenAI, config.BaseURL, config.Model, config.APIKey, config.Timeout)
}
