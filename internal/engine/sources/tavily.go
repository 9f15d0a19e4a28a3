package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// DefaultTavilyURL is the hosted Tavily API.
const DefaultTavilyURL = "https://api.tavily.com"

// Tavily searches via the Tavily REST API.
type Tavily struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewTavily builds a Tavily provider from cfg.
func NewTavily(cfg *engine.Config) *Tavily {
	base := cfg.TavilyURL
	if base == "" {
		base = DefaultTavilyURL
	}
	return &Tavily{BaseURL: strings.TrimRight(base, "/"), APIKey: cfg.TavilyAPIKey, HTTP: cfg.HTTPClient}
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	Topic             string `json:"topic,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
}

type tavilyResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

// tavilyTopic maps topic hints onto the two topics the API accepts.
func tavilyTopic(topic string) string {
	if topic == string(engine.TopicNews) {
		return "news"
	}
	return "general"
}

// Search implements engine.SearchProvider.
func (t *Tavily) Search(ctx context.Context, query string, params engine.SearchParams) (engine.SearchResponse, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:            t.APIKey,
		Query:             query,
		SearchDepth:       params.Depth,
		Topic:             tavilyTopic(params.Topic),
		MaxResults:        params.MaxResults,
		IncludeAnswer:     params.IncludeAnswer,
		IncludeRawContent: params.IncludeRawContent,
		IncludeImages:     params.IncludeImages,
	})
	if err != nil {
		return engine.SearchResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return engine.SearchResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return engine.SearchResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return engine.SearchResponse{}, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var data tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return engine.SearchResponse{}, fmt.Errorf("tavily decode: %w", err)
	}

	out := engine.SearchResponse{DirectAnswer: data.Answer}
	for _, r := range data.Results {
		body := r.Content
		if body == "" {
			body = r.RawContent
		}
		out.Items = append(out.Items, engine.CandidateItem{
			SourceID:  r.URL,
			Title:     r.Title,
			Body:      body,
			Published: r.PublishedDate,
			Relevance: r.Score,
		})
	}
	return out, nil
}
