package engine

import (
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// RunState is a stage of one orchestrated pass.
type RunState string

const (
	StateIdle                 RunState = "idle"
	StateFetching             RunState = "fetching"
	StateAggregating          RunState = "aggregating"
	StateMatchingLedger       RunState = "matching_ledger"
	StatePersistingSideEffect RunState = "persisting_side_effect"
	StateUpdatingLedger       RunState = "updating_ledger"
)

// nextStates lists the legal transitions. Per-item work loops from
// UpdatingLedger (or a skipped MatchingLedger) back to MatchingLedger.
var nextStates = map[RunState][]RunState{
	StateIdle:                 {StateFetching},
	StateFetching:             {StateAggregating},
	StateAggregating:          {StateMatchingLedger, StateUpdatingLedger, StateIdle},
	StateMatchingLedger:       {StatePersistingSideEffect, StateMatchingLedger, StateUpdatingLedger, StateIdle},
	StatePersistingSideEffect: {StateUpdatingLedger, StateMatchingLedger},
	StateUpdatingLedger:       {StateMatchingLedger, StateUpdatingLedger, StateIdle},
}

// Run tracks the state of one pass. Not safe for concurrent use; a run is
// sequential by construction.
type Run struct {
	ID      string
	Kind    string
	Started time.Time
	state   RunState
	trail   []RunState
	failed  bool
}

// NewRun starts tracking a pass in the Idle state.
func NewRun(kind string) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Kind:    kind,
		Started: time.Now(),
		state:   StateIdle,
		trail:   []RunState{StateIdle},
	}
}

// Enter moves the run to s. Illegal transitions are logged and applied anyway
// so the trail reflects what actually happened.
func (r *Run) Enter(s RunState) {
	if !slices.Contains(nextStates[r.state], s) {
		slog.Warn("run: unexpected transition",
			slog.String("run_id", r.ID), slog.String("from", string(r.state)), slog.String("to", string(s)))
	}
	slog.Debug("run: state", slog.String("run_id", r.ID), slog.String("kind", r.Kind), slog.String("state", string(s)))
	r.state = s
	r.trail = append(r.trail, s)
}

// Finish returns the run to Idle, marking it failed when err is non-nil.
// It returns err unchanged.
func (r *Run) Finish(err error) error {
	r.failed = err != nil
	if r.state != StateIdle {
		r.state = StateIdle
		r.trail = append(r.trail, StateIdle)
	}
	elapsed := time.Since(r.Started)
	if err != nil {
		slog.Error("run failed", slog.String("run_id", r.ID), slog.String("kind", r.Kind),
			slog.Duration("elapsed", elapsed), slog.Any("error", err))
	} else {
		slog.Info("run complete", slog.String("run_id", r.ID), slog.String("kind", r.Kind),
			slog.Duration("elapsed", elapsed))
	}
	return err
}

// State returns the current state.
func (r *Run) State() RunState { return r.state }

// Failed reports whether Finish was called with an error.
func (r *Run) Failed() bool { return r.failed }

// Trail returns every state the run passed through, starting with Idle.
func (r *Run) Trail() []RunState { return slices.Clone(r.trail) }
