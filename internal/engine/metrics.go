package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across research and sync runs.
var metrics struct {
	SearchRequests   atomic.Int64
	StrategyFailures atomic.Int64
	LLMCalls         atomic.Int64
	LLMErrors        atomic.Int64
	ResearchRuns     atomic.Int64
	SyncRuns         atomic.Int64
	SyncFailedRuns   atomic.Int64
	ItemsUploaded    atomic.Int64
	ItemsSkipped     atomic.Int64
	ItemsFailed      atomic.Int64
}

var metricKeys = []string{
	"search_requests", "strategy_failures",
	"llm_calls", "llm_errors",
	"research_runs",
	"sync_runs", "sync_failed_runs",
	"items_uploaded", "items_skipped", "items_failed",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":   metrics.SearchRequests.Load(),
		"strategy_failures": metrics.StrategyFailures.Load(),
		"llm_calls":         metrics.LLMCalls.Load(),
		"llm_errors":        metrics.LLMErrors.Load(),
		"research_runs":     metrics.ResearchRuns.Load(),
		"sync_runs":         metrics.SyncRuns.Load(),
		"sync_failed_runs":  metrics.SyncFailedRuns.Load(),
		"items_uploaded":    metrics.ItemsUploaded.Load(),
		"items_skipped":     metrics.ItemsSkipped.Load(),
		"items_failed":      metrics.ItemsFailed.Load(),
		"cache_hits":        hits,
		"cache_misses":      misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the recsync package.
func IncrSyncRuns()       { metrics.SyncRuns.Add(1) }
func IncrSyncFailedRuns() { metrics.SyncFailedRuns.Add(1) }
func IncrItemsUploaded()  { metrics.ItemsUploaded.Add(1) }
func IncrItemsSkipped()   { metrics.ItemsSkipped.Add(1) }
func IncrItemsFailed()    { metrics.ItemsFailed.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
