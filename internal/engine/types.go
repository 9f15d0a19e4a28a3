package engine

import "time"

// --- Core search types ---

// CandidateItem is one search hit after normalization and scoring.
// It is a value type; once scored it is not modified.
type CandidateItem struct {
	SourceID    string    `json:"source_id"` // URL or equivalent
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Published   string    `json:"published,omitempty"` // raw provider value
	PublishedAt time.Time `json:"published_at,omitzero"`
	Relevance   float64   `json:"relevance"`
	Recency     float64   `json:"recency"`
}

// SearchParams are the provider options a strategy varies.
type SearchParams struct {
	Topic             string // general, news, business, ...
	Depth             string // basic or advanced
	MaxResults        int
	IncludeAnswer     bool
	IncludeRawContent bool
	IncludeImages     bool
}

// SearchResponse is what a provider returns for one call.
type SearchResponse struct {
	Items        []CandidateItem `json:"items"`
	DirectAnswer string          `json:"direct_answer,omitempty"`
}

// --- Output types (JSON responses) ---

// RankedItem is an aggregated item with its composite score.
type RankedItem struct {
	CandidateItem
	Score float64 `json:"score"`
}

// StrategyFailure records a strategy that was skipped.
type StrategyFailure struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

// Findings is the outcome of one multi-angle search pass.
type Findings struct {
	Query          string            `json:"query"`
	Topic          TopicHint         `json:"topic"`
	Items          []RankedItem      `json:"items"`
	DirectAnswer   string            `json:"direct_answer,omitempty"`
	Sources        []string          `json:"sources"`
	StrategiesUsed int               `json:"strategies_used"`
	Failures       []StrategyFailure `json:"failures,omitempty"`
}

// ResearchOutput is the result of Researcher.Research.
type ResearchOutput struct {
	Query          string   `json:"query"`
	Mode           string   `json:"mode"` // direct or research
	Topic          string   `json:"topic,omitempty"`
	Report         string   `json:"report"`
	Sources        []string `json:"sources,omitempty"`
	TotalSources   int      `json:"total_sources"`
	StrategiesUsed int      `json:"strategies_used"`
}
