package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the sentence generation backend.
type Config struct {
	Provider string `koanf:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`

	Anthropic  ProviderConfig `koanf:"anthropic"`
	OpenAI     ProviderConfig `koanf:"openai"`
	Gemini     ProviderConfig `koanf:"gemini"`
	OpenRouter ProviderConfig `koanf:"openrouter"`
	Retry      RetryConfig    `koanf:"retry"`

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

// ProviderConfig holds the credentials and model of one provider. BaseURL
// is ignored by Gemini.
type ProviderConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" validate:"gte=1,lte=10"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier" validate:"gte=1"`
}

// DefaultConfig returns the built-in defaults. No provider is selected.
func DefaultConfig() Config {
	return Config{
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 45 * time.Second,
	}
}

// Discover fills in a provider from the vendors' standard API key
// variables when none is configured. Gemini is tried first, then OpenAI,
// Anthropic and OpenRouter. It reports whether a provider is selected.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	candidates := []struct {
		name string
		env  string
		dst  *ProviderConfig
	}{
		{ProviderGemini, "GEMINI_API_KEY", &c.Gemini},
		{ProviderOpenAI, "OPENAI_API_KEY", &c.OpenAI},
		{ProviderAnthropic, "ANTHROPIC_API_KEY", &c.Anthropic},
		{ProviderOpenRouter, "OPENROUTER_API_KEY", &c.OpenRouter},
	}
	for _, cand := range candidates {
		key := cand.dst.APIKey
		if key == "" {
			key = os.Getenv(cand.env)
		}
		if key != "" {
			c.Provider = cand.name
			cand.dst.APIKey = key
			return true
		}
	}
	return false
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var pc ProviderConfig
	switch c.Provider {
	case ProviderAnthropic:
		pc = c.Anthropic
	case ProviderOpenAI:
		pc = c.OpenAI
	case ProviderGemini:
		pc = c.Gemini
	case ProviderOpenRouter:
		pc = c.OpenRouter
	case ProviderMock:
		return nil
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider)
	}
	return nil
}
