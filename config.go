package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	twitter "github.com/anatolykoptev/go-twitter"

	"github.com/anatolykoptev/go_harvest/internal/engine"
	"github.com/anatolykoptev/go_harvest/internal/engine/sources"
	"github.com/anatolykoptev/go_harvest/internal/ledger"
	"github.com/anatolykoptev/go_harvest/internal/recsync"
)

func loadEngineConfig() engine.Config {
	return engine.Config{
		SearchProvider:     env.Str("SEARCH_PROVIDER", "tavily"),
		TavilyURL:          env.Str("TAVILY_URL", sources.DefaultTavilyURL),
		TavilyAPIKey:       env.Str("TAVILY_API_KEY", ""),
		SearxngURL:         env.Str("SEARXNG_URL", ""),
		GoogleNewsURL:      env.Str("GNEWS_URL", sources.DefaultGoogleNewsURL),
		Synthesizer:        env.Str("SYNTHESIZER", "gemini"),
		GeminiAPIKey:       env.Str("GEMINI_API_KEY", ""),
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 8192),
		MaxStrategies:      env.Int("MAX_STRATEGIES", engine.DefaultMaxStrategies),
		MaxResults:         env.Int("MAX_RESULTS", engine.DefaultMaxResults),
		MaxBodyChars:       env.Int("MAX_BODY_CHARS", engine.DefaultMaxBodyChars),
		StrategyTimeout:    env.Duration("STRATEGY_TIMEOUT", 0),
		MaxFindings:        env.Int("MAX_FINDINGS", engine.DefaultMaxFindings),
		MaxSources:         env.Int("MAX_SOURCES", engine.DefaultMaxSources),
		CacheTTL:           env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:    env.Int("CACHE_MAX_ENTRIES", 1000),
		RedisURL:           env.Str("REDIS_URL", ""),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

func loadSyncConfig() recsync.Config {
	return recsync.Config{
		ZoomAPIURL:  env.Str("ZOOM_API_URL", recsync.DefaultZoomAPIURL),
		ZoomToken:   env.Str("ZOOM_TOKEN", ""),
		ZoomUserID:  env.Str("ZOOM_USER_ID", ""),
		VimeoAPIURL: env.Str("VIMEO_API_URL", recsync.DefaultVimeoAPIURL),
		VimeoToken:  env.Str("VIMEO_ACCESS_TOKEN", ""),
		LedgerDSN:   env.Str("LEDGER_DSN", ledger.DefaultPath),
		Schedule:    env.Str("SYNC_SCHEDULE", recsync.DefaultSchedule),
		TmpDir:      env.Str("SYNC_TMP_DIR", ""),
	}
}

// attachClients adds the stealth and Twitter clients for providers that use them.
func attachClients(c *engine.Config) {
	switch c.SearchProvider {
	case "gnews", "chain":
	default:
		return
	}

	bc, err := engine.NewBrowserClient(env.Str("WEBSHARE_API_KEY", ""))
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	if c.SearchProvider != "chain" {
		return
	}
	// Guest mode if no accounts configured.
	accounts := twitter.ParseAccounts(env.Str("TWITTER_ACCOUNTS", ""))
	openCount := 2
	if len(accounts) > 0 {
		openCount = 0
	}
	tw, err := twitter.NewClient(twitter.ClientConfig{
		Accounts:         accounts,
		OpenAccountCount: openCount,
	})
	if err != nil {
		slog.Warn("twitter client init failed", slog.Any("error", err))
		return
	}
	c.TwitterClient = tw
	slog.Info("twitter client ready", slog.Int("pool_size", tw.Pool().Size()))
}

func newSynthesizer(ctx context.Context, c *engine.Config) (engine.Synthesizer, error) {
	switch c.Synthesizer {
	case "chat":
		client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		)
		return engine.NewChatSynthesizer(client, c), nil
	case "gemini":
		return engine.NewGeminiSynthesizer(ctx, c)
	default:
		return nil, &engine.ConfigError{Component: "research", Reason: "unknown SYNTHESIZER " + c.Synthesizer}
	}
}

// research bundles the research side for the commands that need it.
type research struct {
	researcher *engine.Researcher
	cache      *engine.Cache
}

func (r *research) Close() {
	if err := r.cache.Close(); err != nil {
		slog.Warn("cache close failed", slog.Any("error", err))
	}
}

func buildResearch(ctx context.Context) (*research, error) {
	c := loadEngineConfig().WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	attachClients(&c)

	synth, err := newSynthesizer(ctx, &c)
	if err != nil {
		return nil, err
	}
	cache := engine.NewCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries)
	provider, err := sources.New(&c, cache)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	slog.Info("research ready",
		slog.String("provider", c.SearchProvider), slog.String("synthesizer", c.Synthesizer),
		slog.Int("max_strategies", c.MaxStrategies))
	return &research{researcher: engine.NewResearcher(&c, provider, synth), cache: cache}, nil
}

// recordingSync bundles the sync side for the commands that need it.
type recordingSync struct {
	syncer   *recsync.Syncer
	store    ledger.Store
	schedule string
}

func (s *recordingSync) Close() {
	if err := s.store.Close(); err != nil {
		slog.Warn("ledger close failed", slog.Any("error", err))
	}
}

func buildSync(ctx context.Context) (*recordingSync, error) {
	c := loadSyncConfig().WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	store, err := ledger.OpenStore(ctx, c.LedgerDSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	syncer := recsync.NewSyncer(recsync.NewZoomSource(&c), recsync.NewVimeoSink(&c), store, c.TmpDir)
	slog.Info("recording sync ready", slog.String("ledger", fmt.Sprintf("%T", store)), slog.String("schedule", c.Schedule))
	return &recordingSync{syncer: syncer, store: store, schedule: c.Schedule}, nil
}
