package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Researcher runs multi-angle searches and hands the ranked findings to a
// synthesizer.
type Researcher struct {
	cfg      *Config
	provider SearchProvider
	synth    Synthesizer
	rules    []TopicRule
	now      func() time.Time
}

// NewResearcher wires a provider and synthesizer. synth may be nil when only
// Investigate is used. Zero-valued limits in cfg take their defaults.
func NewResearcher(cfg *Config, provider SearchProvider, synth Synthesizer) *Researcher {
	c := cfg.WithDefaults()
	return &Researcher{
		cfg:      &c,
		provider: provider,
		synth:    synth,
		rules:    DefaultTopicRules,
		now:      time.Now,
	}
}

// Investigate runs one search pass: strategies → fetch → aggregate.
// Individual strategy failures are reported in Findings.Failures; an error is
// returned only when the context ends before any strategy succeeds.
func (r *Researcher) Investigate(ctx context.Context, query string, hint TopicHint) (Findings, error) {
	run := NewRun("research")
	var f Findings
	err := TrackOperation(ctx, "investigate:"+query, func(ctx context.Context) error {
		var err error
		f, err = r.investigate(ctx, run, query, hint)
		return err
	})
	return f, run.Finish(err)
}

func (r *Researcher) investigate(ctx context.Context, run *Run, query string, hint TopicHint) (Findings, error) {
	metrics.ResearchRuns.Add(1)
	strategies := BuildStrategies(query, hint, r.cfg.MaxStrategies, r.cfg.MaxResults)
	slog.Info("research: executing strategies",
		slog.String("query", query), slog.String("topic", string(hint)), slog.Int("strategies", len(strategies)))

	run.Enter(StateFetching)
	collected := FetchAll(ctx, r.provider, query, strategies, FetchOpts{
		MaxBodyChars: r.cfg.MaxBodyChars,
		Timeout:      r.cfg.StrategyTimeout,
		Now:          r.now,
	})
	if err := ctx.Err(); err != nil && len(collected.Items) == 0 {
		return Findings{}, err
	}

	run.Enter(StateAggregating)
	ranked := Aggregate(collected.Items)
	f := Findings{
		Query:          query,
		Topic:          hint,
		Items:          ranked,
		DirectAnswer:   collected.DirectAnswer,
		Sources:        SourceList(ranked),
		StrategiesUsed: len(strategies),
		Failures:       collected.Failures,
	}
	slog.Info("research: complete",
		slog.Int("items", len(ranked)), slog.Int("raw_items", len(collected.Items)),
		slog.Int("failed_strategies", len(collected.Failures)))
	return f, nil
}

// Classify returns the topic hint for query under the researcher's rules.
func (r *Researcher) Classify(query string) TopicHint {
	return Classify(query, r.rules)
}

// Research classifies the query, asks the synthesizer for a plan and, when
// research is requested, investigates and writes the report.
func (r *Researcher) Research(ctx context.Context, query string) (*ResearchOutput, error) {
	if r.synth == nil {
		return nil, &ConfigError{Component: "research", Reason: "no synthesizer configured"}
	}
	hint := Classify(query, r.rules)

	decision, err := r.synth.Plan(ctx, query, hint)
	if err != nil {
		return nil, err
	}

	switch d := decision.(type) {
	case DirectAnswer:
		return &ResearchOutput{Query: query, Mode: "direct", Report: d.Text}, nil
	case ResearchRequested:
		slog.Info("research: focus", slog.String("topic", string(d.Hint)), slog.String("query", d.Query))
		f, err := r.Investigate(ctx, d.Query, d.Hint)
		if err != nil {
			return nil, err
		}
		report, err := r.synth.Report(ctx, query, f)
		if err != nil {
			return nil, err
		}
		sources := f.Sources
		if len(sources) > r.cfg.MaxSources {
			sources = sources[:r.cfg.MaxSources]
		}
		return &ResearchOutput{
			Query:          query,
			Mode:           "research",
			Topic:          string(d.Hint),
			Report:         report,
			Sources:        sources,
			TotalSources:   len(f.Sources),
			StrategiesUsed: f.StrategiesUsed,
		}, nil
	default:
		return nil, fmt.Errorf("research: unexpected decision %T", decision)
	}
}
