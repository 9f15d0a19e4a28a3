package engine

import (
	"errors"
	"slices"
	"testing"
)

func TestWithDefaults(t *testing.T) {
	c := Config{MaxResults: 3}.WithDefaults()
	if c.MaxResults != 3 {
		t.Errorf("explicit MaxResults overwritten: %d", c.MaxResults)
	}
	if c.MaxStrategies != DefaultMaxStrategies || c.MaxBodyChars != DefaultMaxBodyChars ||
		c.MaxFindings != DefaultMaxFindings || c.MaxSources != DefaultMaxSources {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.HTTPClient == nil || c.SearchProvider != "tavily" || c.Synthesizer != "gemini" {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestWithDefaultsNormalizesNames(t *testing.T) {
	c := Config{SearchProvider: " Tavily ", TavilyAPIKey: "k", Synthesizer: "GEMINI", GeminiAPIKey: "g"}.WithDefaults()
	if c.SearchProvider != "tavily" || c.Synthesizer != "gemini" {
		t.Errorf("names not normalized: %q %q", c.SearchProvider, c.Synthesizer)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		missing []string
		reason  bool
	}{
		{"ok tavily gemini", Config{SearchProvider: "tavily", TavilyAPIKey: "k", Synthesizer: "gemini", GeminiAPIKey: "g"}, nil, false},
		{"gnews chat", Config{SearchProvider: "gnews", Synthesizer: "chat", LLMAPIKey: "l"}, nil, false},
		{"missing both", Config{SearchProvider: "tavily", Synthesizer: "gemini"}, []string{"TAVILY_API_KEY", "GEMINI_API_KEY"}, false},
		{"searxng", Config{SearchProvider: "searxng", Synthesizer: "chat"}, []string{"SEARXNG_URL", "LLM_API_KEY"}, false},
		{"chain", Config{SearchProvider: "chain", Synthesizer: "gemini", GeminiAPIKey: "g"}, []string{"TAVILY_API_KEY or SEARXNG_URL"}, false},
		{"unknown provider", Config{SearchProvider: "bing", Synthesizer: "gemini"}, nil, true},
		{"unknown synth", Config{SearchProvider: "gnews", Synthesizer: "claude"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.missing == nil && !tt.reason {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("want ConfigError, got %v", err)
			}
			if tt.reason && ce.Reason == "" {
				t.Errorf("want reason, got %+v", ce)
			}
			if tt.missing != nil && !slices.Equal(ce.Missing, tt.missing) {
				t.Errorf("missing = %v, want %v", ce.Missing, tt.missing)
			}
		})
	}
}
