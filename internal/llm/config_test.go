package llm

import (
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"nothing selected", Config{}, true},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: ProviderConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: ProviderConfig{APIKey: "sk-test"}}, false},
		{"gemini key in wrong slot", Config{Provider: ProviderGemini, OpenAI: ProviderConfig{APIKey: "sk-test"}}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: ProviderConfig{APIKey: "sk-or"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearVendorKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestConfig_Discover(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		clearVendorKeys(t)
		cfg := DefaultConfig()
		if cfg.Discover() {
			t.Fatalf("expected no provider, got %q", cfg.Provider)
		}
		if cfg.Enabled() {
			t.Fatal("expected disabled config")
		}
	})

	t.Run("priority", func(t *testing.T) {
		clearVendorKeys(t)
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		t.Setenv("OPENAI_API_KEY", "sk-oai")
		cfg := DefaultConfig()
		if !cfg.Discover() {
			t.Fatal("expected a provider")
		}
		if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-oai" {
			t.Fatalf("got provider %q key %q", cfg.Provider, cfg.OpenAI.APIKey)
		}
		if cfg.OpenAI.Model != "gpt-4o-mini" {
			t.Fatalf("default model lost: %q", cfg.OpenAI.Model)
		}
	})

	t.Run("configured key wins", func(t *testing.T) {
		clearVendorKeys(t)
		cfg := DefaultConfig()
		cfg.Anthropic.APIKey = "from-file"
		if !cfg.Discover() || cfg.Provider != ProviderAnthropic {
			t.Fatalf("got provider %q", cfg.Provider)
		}
	})

	t.Run("explicit provider kept", func(t *testing.T) {
		clearVendorKeys(t)
		t.Setenv("GEMINI_API_KEY", "g")
		cfg := DefaultConfig()
		cfg.Provider = ProviderMock
		if !cfg.Discover() || cfg.Provider != ProviderMock {
			t.Fatalf("got provider %q", cfg.Provider)
		}
	})
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64 // cost of 1M in + 1M out
		found bool
	}{
		{"gpt-4o-mini", 0.75, true},
		{"google/gemini-2.0-flash-001", 0.5, true},
		{"claude-haiku-4-5-20251001", 6, true},
		{"mock", 0, false},
		{"meta-llama/llama-3-8b", 0, false},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if (c != nil) != tt.found {
			t.Errorf("LookupCost(%q) found = %v, want %v", tt.model, c != nil, tt.found)
			continue
		}
		if c != nil {
			if got := c.Cost(1_000_000, 1_000_000); got != tt.want {
				t.Errorf("LookupCost(%q).Cost = %v, want %v", tt.model, got, tt.want)
			}
		}
	}
}
