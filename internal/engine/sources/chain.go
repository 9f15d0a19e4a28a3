package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// Named pairs a provider with the name used in logs and cache keys.
type Named struct {
	Name     string
	Provider engine.SearchProvider
}

// Chain fans one search out to several providers in order and merges the
// results. It fails only when every provider fails.
type Chain []Named

// Search implements engine.SearchProvider.
func (c Chain) Search(ctx context.Context, query string, params engine.SearchParams) (engine.SearchResponse, error) {
	if len(c) == 0 {
		return engine.SearchResponse{}, errors.New("chain: no providers")
	}
	var (
		out  engine.SearchResponse
		errs []error
		ok   int
	)
	for _, n := range c {
		resp, err := n.Provider.Search(ctx, query, params)
		if err != nil {
			slog.Debug("chain: provider failed", slog.String("provider", n.Name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", n.Name, err))
			continue
		}
		ok++
		out.Items = append(out.Items, resp.Items...)
		if utf8.RuneCountInString(resp.DirectAnswer) > utf8.RuneCountInString(out.DirectAnswer) {
			out.DirectAnswer = resp.DirectAnswer
		}
	}
	if ok == 0 {
		return engine.SearchResponse{}, errors.Join(errs...)
	}
	return out, nil
}

// New builds the provider named by cfg.SearchProvider, wrapped in cache when
// cache is non-nil. "chain" combines every provider with credentials.
func New(cfg *engine.Config, cache *engine.Cache) (engine.SearchProvider, error) {
	var p engine.SearchProvider
	switch cfg.SearchProvider {
	case "tavily":
		p = NewTavily(cfg)
	case "searxng":
		p = NewSearXNG(cfg)
	case "gnews":
		p = NewGoogleNews(cfg)
	case "chain":
		var chain Chain
		if cfg.TavilyAPIKey != "" {
			chain = append(chain, Named{"tavily", NewTavily(cfg)})
		}
		if cfg.SearxngURL != "" {
			chain = append(chain, Named{"searxng", NewSearXNG(cfg)})
		}
		chain = append(chain, Named{"gnews", NewGoogleNews(cfg)})
		if cfg.TwitterClient != nil {
			chain = append(chain, Named{"twitter", NewTwitter(cfg)})
		}
		p = chain
	default:
		return nil, &engine.ConfigError{Component: "search", Reason: "unknown SEARCH_PROVIDER " + cfg.SearchProvider}
	}
	if cache == nil {
		return p, nil
	}
	return engine.CachedProvider{Name: cfg.SearchProvider, Provider: p, Cache: cache}, nil
}
