package engine

import (
	"net/http"
	"strings"
	"time"

	twitter "github.com/anatolykoptev/go-twitter"
)

// Config holds all research engine configuration, built once in main and
// passed by pointer to the providers, synthesizers and the Researcher.
type Config struct {
	SearchProvider     string // tavily, searxng, gnews, chain
	TavilyURL          string
	TavilyAPIKey       string
	SearxngURL         string
	GoogleNewsURL      string
	Synthesizer        string // gemini or chat
	GeminiAPIKey       string
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	MaxStrategies      int           // strategies beyond this are dropped
	MaxResults         int           // per-strategy result count requested from the provider
	MaxBodyChars       int           // body truncation, in runes
	StrategyTimeout    time.Duration // 0 = transport default
	MaxFindings        int           // ranked items handed to the synthesizer
	MaxSources         int           // source URLs listed in the research output
	CacheTTL           time.Duration
	CacheMaxEntries    int
	RedisURL           string
	HTTPClient         *http.Client
	BrowserClient      *BrowserClient  // nil = Google News via HTTPClient
	TwitterClient      *twitter.Client // nil = Twitter provider disabled
}

// Defaults for zero-valued Config fields.
const (
	DefaultMaxStrategies = 5
	DefaultMaxResults    = 8
	DefaultMaxBodyChars  = 2000
	DefaultMaxFindings   = 10
	DefaultMaxSources    = 15
)

// WithDefaults returns a copy of c with zero values replaced by defaults
// and the provider and synthesizer names lowercased.
func (c Config) WithDefaults() Config {
	if c.MaxStrategies <= 0 {
		c.MaxStrategies = DefaultMaxStrategies
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.MaxBodyChars <= 0 {
		c.MaxBodyChars = DefaultMaxBodyChars
	}
	if c.MaxFindings <= 0 {
		c.MaxFindings = DefaultMaxFindings
	}
	if c.MaxSources <= 0 {
		c.MaxSources = DefaultMaxSources
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	c.SearchProvider = strings.ToLower(strings.TrimSpace(c.SearchProvider))
	if c.SearchProvider == "" {
		c.SearchProvider = "tavily"
	}
	c.Synthesizer = strings.ToLower(strings.TrimSpace(c.Synthesizer))
	if c.Synthesizer == "" {
		c.Synthesizer = "gemini"
	}
	return c
}

// Validate reports missing credentials for the configured provider and
// synthesizer. Names are matched as WithDefaults normalizes them. It must pass before any research run starts.
func (c Config) Validate() error {
	var missing []string
	switch c.SearchProvider {
	case "tavily":
		if c.TavilyAPIKey == "" {
			missing = append(missing, "TAVILY_API_KEY")
		}
	case "searxng":
		if c.SearxngURL == "" {
			missing = append(missing, "SEARXNG_URL")
		}
	case "gnews":
	case "chain":
		if c.TavilyAPIKey == "" && c.SearxngURL == "" {
			missing = append(missing, "TAVILY_API_KEY or SEARXNG_URL")
		}
	default:
		return &ConfigError{Component: "research", Reason: "unknown SEARCH_PROVIDER " + c.SearchProvider}
	}
	switch c.Synthesizer {
	case "gemini":
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case "chat":
		if c.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
	default:
		return &ConfigError{Component: "research", Reason: "unknown SYNTHESIZER " + c.Synthesizer}
	}
	if len(missing) > 0 {
		return &ConfigError{Component: "research", Missing: missing}
	}
	return nil
}
