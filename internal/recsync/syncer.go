package recsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/anatolykoptev/go_harvest/internal/engine"
	"github.com/anatolykoptev/go_harvest/internal/ledger"
)

// ErrRunInProgress is returned by RunOnce while another run holds the syncer.
var ErrRunInProgress = errors.New("recsync: run in progress")

// Summary reports one sync run.
type Summary struct {
	RunID     string          `json:"run_id"`
	Started   time.Time       `json:"started"`
	Elapsed   time.Duration   `json:"elapsed"`
	Pending   int             `json:"pending"`
	Succeeded int             `json:"succeeded"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	State     engine.RunState `json:"state"`
	Error     string          `json:"error,omitempty"`
}

// item is one completed recording file awaiting delivery.
type item struct {
	key  string // recording ID
	name string
	url  string
}

// Syncer delivers new recordings from a Source to a Sink and records them
// in the ledger. Runs never overlap.
type Syncer struct {
	source Source
	sink   Sink
	store  ledger.Store
	tmpDir string
	mu     sync.Mutex
}

// NewSyncer wires a syncer. tmpDir may be empty for the OS default.
func NewSyncer(source Source, sink Sink, store ledger.Store, tmpDir string) *Syncer {
	return &Syncer{source: source, sink: sink, store: store, tmpDir: tmpDir}
}

// RunOnce performs one pass: load the ledger, list recordings, deliver every
// unknown completed file, then save the ledger. Per-item failures are counted
// in the Summary and do not fail the run.
func (s *Syncer) RunOnce(ctx context.Context) (Summary, error) {
	if !s.mu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer s.mu.Unlock()

	engine.IncrSyncRuns()
	run := engine.NewRun("sync")
	sum := Summary{RunID: run.ID, Started: run.Started}

	err := engine.TrackOperation(ctx, "sync", func(ctx context.Context) error {
		return s.runOnce(ctx, run, &sum)
	})
	if err != nil {
		engine.IncrSyncFailedRuns()
		sum.Error = err.Error()
	}
	err = run.Finish(err)
	sum.State = run.State()
	sum.Elapsed = time.Since(sum.Started)
	slog.Info("sync summary", slog.String("run_id", sum.RunID),
		slog.Int("pending", sum.Pending), slog.Int("succeeded", sum.Succeeded),
		slog.Int("skipped", sum.Skipped), slog.Int("failed", sum.Failed))
	return sum, err
}

func (s *Syncer) runOnce(ctx context.Context, run *engine.Run, sum *Summary) error {
	run.Enter(engine.StateFetching)
	l, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	recordings, err := s.source.ListRecordings(ctx)
	if err != nil {
		return fmt.Errorf("list recordings: %w", err)
	}

	run.Enter(engine.StateAggregating)
	items := pendingItems(recordings)
	sum.Pending = len(items)
	slog.Info("sync: checking recordings", slog.Int("recordings", len(recordings)), slog.Int("files", len(items)))

	for _, it := range items {
		if ctx.Err() != nil {
			break
		}
		run.Enter(engine.StateMatchingLedger)
		s.deliver(ctx, run, l, it, sum)
	}

	run.Enter(engine.StateUpdatingLedger)
	// Delivered items must be recorded even if the run was cancelled.
	if err := s.store.Save(context.WithoutCancel(ctx), l); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return ctx.Err()
}

// pendingItems flattens recordings into completed files, in listing order.
func pendingItems(recordings []Recording) []item {
	var out []item
	for _, rec := range recordings {
		for _, f := range rec.Files {
			if f.Status != StatusCompleted || f.DownloadURL == "" {
				continue
			}
			out = append(out, item{
				key:  string(rec.ID),
				name: fmt.Sprintf("%s_%s.mp4", rec.ID, f.ID),
				url:  f.DownloadURL,
			})
		}
	}
	return out
}

// deliver handles one file. The temp download is removed on every path.
func (s *Syncer) deliver(ctx context.Context, run *engine.Run, l *ledger.Ledger, it item, sum *Summary) {
	fail := func(action string, err error) {
		sum.Failed++
		engine.IncrItemsFailed()
		slog.Warn("sync: item failed", slog.String("file", it.name),
			slog.Any("error", &engine.SideEffectError{Action: action, Key: it.key, Err: err}))
	}

	f, err := os.CreateTemp(s.tmpDir, "recsync-*-"+it.name)
	if err != nil {
		fail("download", err)
		return
	}
	defer os.Remove(f.Name()) //nolint:errcheck
	defer f.Close()

	if err := s.source.Download(ctx, it.url, f); err != nil {
		fail("download", err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fail("download", err)
		return
	}
	fp, size, err := ledger.FingerprintReader(f)
	if err != nil {
		fail("fingerprint", err)
		return
	}

	if l.IsKnown(it.key, fp) {
		sum.Skipped++
		engine.IncrItemsSkipped()
		slog.Info("sync: duplicate found, skipping", slog.String("file", it.name), slog.String("fingerprint", fp))
		return
	}

	run.Enter(engine.StatePersistingSideEffect)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fail("upload", err)
		return
	}
	ref, err := s.sink.Upload(ctx, it.name, f, size)
	if err != nil {
		fail("upload", err)
		return
	}

	run.Enter(engine.StateUpdatingLedger)
	if err := l.Put(ledger.Entry{Key: it.key, Fingerprint: fp, DestinationRef: ref}); err != nil {
		fail("record", err)
		return
	}
	sum.Succeeded++
	engine.IncrItemsUploaded()
	slog.Info("sync: uploaded", slog.String("file", it.name), slog.String("destination", ref))
}
