package engine

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Scoring weights and bounds.
const (
	RelevanceWeight = 0.7
	RecencyWeight   = 0.3
	DefaultRecency  = 0.5 // no parseable timestamp
	MinRecency      = 0.1
	RecencyDecay    = 0.01 // per day
)

// ParsePublished parses a provider timestamp in any common layout.
func ParsePublished(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "n/a") {
		return time.Time{}, &ParseError{Field: "published_date", Value: raw, Err: errEmptyTimestamp}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, &ParseError{Field: "published_date", Value: raw, Err: err}
	}
	return t, nil
}

// RecencyFromAge scores an item published days ago: 1.0 today, minus 0.01
// per day, never below 0.1. Future dates count as today.
func RecencyFromAge(days int) float64 {
	if days < 0 {
		days = 0
	}
	return math.Max(MinRecency, 1.0-float64(days)*RecencyDecay)
}

// RecencyScore returns the recency of a raw timestamp relative to now and the
// parsed time. Unparseable input scores DefaultRecency with a zero time.
func RecencyScore(raw string, now time.Time) (float64, time.Time) {
	t, err := ParsePublished(raw)
	if err != nil {
		return DefaultRecency, time.Time{}
	}
	return RecencyFromAge(daysBetween(t, now)), t
}

// daysBetween counts whole days from t to now, flooring like a calendar
// difference would.
func daysBetween(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// CompositeScore blends relevance and recency into the rank key.
func CompositeScore(relevance, recency float64) float64 {
	return RelevanceWeight*relevance + RecencyWeight*recency
}

// NormalizeItem cleans the body and title and derives the recency score.
func NormalizeItem(it CandidateItem, now time.Time, maxBody int) CandidateItem {
	it.SourceID = strings.TrimSpace(it.SourceID)
	it.Title = CollapseSpace(it.Title)
	if it.Title == "" {
		it.Title = "Untitled"
	}
	it.Body = NormalizeBody(it.Body, maxBody)
	it.Recency, it.PublishedAt = RecencyScore(it.Published, now)
	return it
}

// Aggregate deduplicates items by SourceID (first occurrence wins) and ranks
// them by composite score, descending. Equal scores keep aggregation order.
// Items without a SourceID cannot be compared and are all kept.
func Aggregate(items []CandidateItem) []RankedItem {
	seen := make(map[string]bool, len(items))
	out := make([]RankedItem, 0, len(items))
	for _, it := range items {
		if it.SourceID != "" {
			if seen[it.SourceID] {
				continue
			}
			seen[it.SourceID] = true
		}
		out = append(out, RankedItem{
			CandidateItem: it,
			Score:         CompositeScore(it.Relevance, it.Recency),
		})
	}
	slices.SortStableFunc(out, func(a, b RankedItem) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out
}

// SourceList returns the distinct non-empty source identifiers of ranked
// items, in rank order.
func SourceList(items []RankedItem) []string {
	var out []string
	for _, it := range items {
		if it.SourceID != "" {
			out = append(out, it.SourceID)
		}
	}
	return out
}
