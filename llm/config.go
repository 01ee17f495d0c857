package llm

import "fmt"

// Config holds provider connection settings. BaseURL allows pointing the
// client at any OpenAI-compatible endpoint.
type Config struct {
	APIKey         string  `yaml:"api_key" envconfig:"LLM_API_KEY"`
	BaseURL        string  `yaml:"base_url" envconfig:"LLM_BASE_URL"`
	Model          string  `yaml:"model" envconfig:"LLM_MODEL"`
	MaxTokens      int     `yaml:"max_tokens" envconfig:"LLM_MAX_TOKENS"`
	Temperature    float32 `yaml:"temperature" envconfig:"LLM_TEMPERATURE"`
	TimeoutSeconds int     `yaml:"timeout_seconds" envconfig:"LLM_TIMEOUT_SECONDS"`
	MaxRetries     int     `yaml:"max_retries" envconfig:"LLM_MAX_RETRIES"`
}

// Normalize validates required fields and fills defaults.
func (c *Config) Normalize() error {
	if c.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1024
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be >= 0")
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	return nil
}
