package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// SearXNG queries a self-hosted SearXNG instance. It has no answer
// synthesis; DirectAnswer comes from the instance's answers block when present.
type SearXNG struct {
	BaseURL string
	HTTP    *http.Client
}

// NewSearXNG builds a SearXNG provider from cfg.
func NewSearXNG(cfg *engine.Config) *SearXNG {
	return &SearXNG{BaseURL: strings.TrimRight(cfg.SearxngURL, "/"), HTTP: cfg.HTTPClient}
}

type searxngResult struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	URL           string  `json:"url"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"publishedDate"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
	Answers []any           `json:"answers"`
}

// Search implements engine.SearchProvider.
func (s *SearXNG) Search(ctx context.Context, query string, params engine.SearchParams) (engine.SearchResponse, error) {
	u, err := url.Parse(s.BaseURL + "/search")
	if err != nil {
		return engine.SearchResponse{}, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	if params.Topic == string(engine.TopicNews) {
		q.Set("categories", "news")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return engine.SearchResponse{}, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return engine.SearchResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return engine.SearchResponse{}, fmt.Errorf("searxng returned status %d", resp.StatusCode)
	}

	var data searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return engine.SearchResponse{}, fmt.Errorf("searxng decode: %w", err)
	}

	results := data.Results
	if params.MaxResults > 0 && len(results) > params.MaxResults {
		results = results[:params.MaxResults]
	}

	// SearXNG scores are unbounded; scale into [0,1] by the batch maximum.
	var top float64
	for _, r := range results {
		top = max(top, r.Score)
	}

	out := engine.SearchResponse{DirectAnswer: firstAnswer(data.Answers)}
	for _, r := range results {
		rel := 0.0
		if top > 0 {
			rel = r.Score / top
		}
		out.Items = append(out.Items, engine.CandidateItem{
			SourceID:  r.URL,
			Title:     engine.StripTags(r.Title),
			Body:      engine.StripTags(r.Content),
			Published: r.PublishedDate,
			Relevance: rel,
		})
	}
	return out, nil
}

// firstAnswer returns the first answer string. Newer SearXNG versions emit
// objects with an "answer" field, older ones plain strings.
func firstAnswer(answers []any) string {
	for _, a := range answers {
		switch v := a.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if s, ok := v["answer"].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
