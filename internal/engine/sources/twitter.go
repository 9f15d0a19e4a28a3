package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	twitter "github.com/anatolykoptev/go-twitter"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// twitterRelevance is the flat score given to tweets; the timeline API
// returns no ranking signal.
const twitterRelevance = 0.5

// Twitter searches the X/Twitter timeline.
type Twitter struct {
	Client *twitter.Client
}

// NewTwitter builds a Twitter provider from cfg.
func NewTwitter(cfg *engine.Config) *Twitter {
	return &Twitter{Client: cfg.TwitterClient}
}

// Search implements engine.SearchProvider.
func (t *Twitter) Search(ctx context.Context, query string, params engine.SearchParams) (engine.SearchResponse, error) {
	if t.Client == nil {
		return engine.SearchResponse{}, errors.New("twitter client not configured")
	}
	limit := params.MaxResults
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	tweets, err := t.Client.SearchTimeline(ctx, query, limit)
	if err != nil {
		return engine.SearchResponse{}, fmt.Errorf("twitter search: %w", err)
	}
	slog.Debug("twitter search", slog.Int("tweets", len(tweets)), slog.String("query", query))

	var out engine.SearchResponse
	for _, tw := range tweets {
		out.Items = append(out.Items, engine.CandidateItem{
			SourceID:  "https://x.com/i/status/" + tw.ID,
			Title:     tweetTitle(tw.Text),
			Body:      fmt.Sprintf("@%s (likes %d, retweets %d): %s", tw.AuthorID, tw.Likes, tw.Retweets, tw.Text),
			Published: tweetPublished(tw.CreatedAt),
			Relevance: twitterRelevance,
		})
	}
	return out, nil
}

// tweetPublished formats t as RFC3339, or "" when the tweet carries no time.
func tweetPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// tweetTitle is the first line of the tweet, capped at 120 runes.
func tweetTitle(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return engine.TruncateRunes(line, 120, "...")
}
