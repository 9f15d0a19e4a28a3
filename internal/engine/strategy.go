package engine

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"
)

// SearchProvider runs one search call. Implementations live in sources/.
type SearchProvider interface {
	Search(ctx context.Context, query string, params SearchParams) (SearchResponse, error)
}

// Strategy is one parameterized search variation of a base query.
type Strategy struct {
	Name      string
	Transform func(base string) string
	Params    SearchParams
}

// Query returns the derived query for base.
func (s Strategy) Query(base string) string {
	if s.Transform == nil {
		return base
	}
	return s.Transform(base)
}

func suffix(sfx string) func(string) string {
	return func(base string) string { return base + " " + sfx }
}

// baseParams are shared by every strategy unless overridden.
func baseParams(maxResults int) SearchParams {
	return SearchParams{
		Depth:             "advanced",
		MaxResults:        maxResults,
		IncludeAnswer:     true,
		IncludeRawContent: true,
		IncludeImages:     false,
	}
}

// BuildStrategies returns the ordered strategy list for query, capped at limit.
// The breaking-news variant is only added for queries about recent events.
func BuildStrategies(query string, hint TopicHint, limit, maxResults int) []Strategy {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	with := func(topic TopicHint, n int) SearchParams {
		p := baseParams(n)
		p.Topic = string(topic)
		return p
	}

	strategies := []Strategy{
		{Name: "Recent Comprehensive", Params: with(hint, maxResults)},
		{Name: "Academic Research", Transform: suffix("research study analysis report"), Params: with(TopicGeneral, maxResults)},
	}
	if IsTimely(query) {
		strategies = append(strategies, Strategy{
			Name: "Breaking News", Transform: suffix("latest news updates"), Params: with(TopicNews, maxResults),
		})
	}
	strategies = append(strategies,
		Strategy{Name: "Historical Context", Transform: suffix("history background context"), Params: with(TopicGeneral, maxResults)},
		Strategy{Name: "Expert Analysis", Transform: suffix("expert opinion analysis perspective"), Params: with(TopicGeneral, min(6, maxResults))},
	)

	if limit > 0 && len(strategies) > limit {
		strategies = strategies[:limit]
	}
	return strategies
}

// Collected is the union of all successful strategy responses.
type Collected struct {
	Items        []CandidateItem
	DirectAnswer string
	Attempted    int
	Failures     []StrategyFailure
}

// FetchOpts tunes FetchAll.
type FetchOpts struct {
	MaxBodyChars int
	Timeout      time.Duration // per strategy, 0 = none
	Now          func() time.Time
}

// FetchAll runs each strategy in order against p. A failing strategy is
// logged and skipped; it never aborts the remaining ones. Items are
// normalized and recency-scored as they arrive.
func FetchAll(ctx context.Context, p SearchProvider, query string, strategies []Strategy, opts FetchOpts) Collected {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	var out Collected
	for i, s := range strategies {
		if ctx.Err() != nil {
			break
		}
		out.Attempted++
		q := s.Query(query)
		slog.Debug("strategy start", slog.Int("n", i+1), slog.String("strategy", s.Name), slog.String("query", q))

		resp, err := fetchOne(ctx, p, q, s.Params, opts.Timeout)
		if err != nil {
			fe := &FetchError{Strategy: s.Name, Query: q, Err: err}
			metrics.StrategyFailures.Add(1)
			slog.Warn("strategy failed", slog.String("strategy", s.Name), slog.Any("error", fe))
			out.Failures = append(out.Failures, StrategyFailure{Strategy: s.Name, Error: err.Error()})
			continue
		}

		ts := now()
		for _, it := range resp.Items {
			out.Items = append(out.Items, NormalizeItem(it, ts, opts.MaxBodyChars))
		}
		if utf8.RuneCountInString(resp.DirectAnswer) > utf8.RuneCountInString(out.DirectAnswer) {
			out.DirectAnswer = resp.DirectAnswer
		}
	}
	return out
}

func fetchOne(ctx context.Context, p SearchProvider, q string, params SearchParams, timeout time.Duration) (SearchResponse, error) {
	metrics.SearchRequests.Add(1)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Search(ctx, q, params)
}
