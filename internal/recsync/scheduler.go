package recsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Scheduler runs a Syncer immediately and then on a cron schedule. A tick
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	syncer *Syncer
	spec   string
	first  sync.WaitGroup
}

// NewScheduler creates a scheduler; spec accepts standard cron lines and
// descriptors such as "@every 1h".
func NewScheduler(syncer *Syncer, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	logger := cronLogger{l: slog.Default()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		syncer: syncer,
		spec:   spec,
	}
}

// Start registers the job, starts the cron loop and kicks off the first run
// in the background. Runs use ctx; cancel it and call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.Info("sync scheduler started", slog.String("schedule", s.spec))
	job := s.cron.Entry(id).WrappedJob
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		job.Run()
	}()
	return nil
}

// Stop halts the schedule. The returned context is done once any running
// job, including the initial one, has finished.
func (s *Scheduler) Stop() context.Context {
	cronDone := s.cron.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.first.Wait()
		cancel()
	}()
	return ctx
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.syncer.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			slog.Info("sync: previous run still going, tick skipped")
			return
		}
		slog.Error("sync run failed", slog.Any("error", err))
	}
}
