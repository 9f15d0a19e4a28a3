package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mmcdole/gofeed"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint.
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// GoogleNews searches the Google News RSS feed. Feeds carry no scores, so
// relevance falls off linearly with feed position.
type GoogleNews struct {
	BaseURL string
	HTTP    *http.Client
	Browser *engine.BrowserClient // nil = plain HTTP
}

// NewGoogleNews builds a Google News provider from cfg.
func NewGoogleNews(cfg *engine.Config) *GoogleNews {
	base := cfg.GoogleNewsURL
	if base == "" {
		base = DefaultGoogleNewsURL
	}
	return &GoogleNews{BaseURL: base, HTTP: cfg.HTTPClient, Browser: cfg.BrowserClient}
}

// Search implements engine.SearchProvider.
func (g *GoogleNews) Search(ctx context.Context, query string, params engine.SearchParams) (engine.SearchResponse, error) {
	u, err := url.Parse(g.BaseURL)
	if err != nil {
		return engine.SearchResponse{}, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	u.RawQuery = q.Encode()

	data, err := engine.FetchBytes(ctx, g.HTTP, g.Browser, u.String(), map[string]string{
		"Accept": "application/rss+xml, application/xml;q=0.9",
	})
	if err != nil {
		return engine.SearchResponse{}, fmt.Errorf("google news: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return engine.SearchResponse{}, fmt.Errorf("google news parse: %w", err)
	}

	items := feed.Items
	if params.MaxResults > 0 && len(items) > params.MaxResults {
		items = items[:params.MaxResults]
	}

	var out engine.SearchResponse
	for i, it := range items {
		out.Items = append(out.Items, engine.CandidateItem{
			SourceID:  strings.TrimSpace(it.Link),
			Title:     strings.TrimSpace(it.Title),
			Body:      describe(it.Description),
			Published: feedPublished(it),
			Relevance: positionRelevance(i, len(items)),
		})
	}
	return out, nil
}

// describe converts an HTML description to markdown, falling back to the
// tag-stripped text.
func describe(desc string) string {
	if desc == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(desc)
	if err != nil {
		return engine.StripTags(desc)
	}
	return md
}

func feedPublished(it *gofeed.Item) string {
	if it.PublishedParsed != nil {
		return it.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return it.Published
}

// positionRelevance scores the i-th of n results from 1.0 down to 0.5.
func positionRelevance(i, n int) float64 {
	if n <= 1 {
		return 1.0
	}
	return 1.0 - 0.5*float64(i)/float64(n-1)
}
