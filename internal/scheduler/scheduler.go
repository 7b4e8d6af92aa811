// Package scheduler owns the daemon loop: fetch every source, run the
// pipeline, notify on the fresh ranked jobs, repeat on an interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmillar/jobpulse/internal/model"
	"github.com/dmillar/jobpulse/internal/pipeline"
	"github.com/dmillar/jobpulse/internal/source"
)

// Runner is the slice of the pipeline the scheduler drives.
type Runner interface {
	Run(ctx context.Context, entries []model.RawEntry) (pipeline.Result, error)
}

// Scheduler ticks on an interval and runs one full ingest cycle per tick.
type Scheduler struct {
	fetchers []model.SourceFetcher
	pipe     Runner
	notifier model.Notifier
	interval time.Duration
	logger   *slog.Logger
}

// New creates a scheduler. notifier may be nil to skip notifications.
func New(fetchers []model.SourceFetcher, pipe Runner, notifier model.Notifier, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		fetchers: fetchers,
		pipe:     pipe,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then ticks on the
// configured interval. Returns nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"sources", len(s.fetchers),
	)

	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.cycle(ctx)
		}
	}
}

// cycle runs one fetch-process-notify pass. Failures log and leave the
// loop running; a bad cycle must not kill the daemon.
func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	entries := source.FetchAll(ctx, s.fetchers, s.logger)

	result, err := s.pipe.Run(ctx, entries)
	if err != nil {
		s.logger.Error("ingest cycle failed", "error", err)
		return
	}

	if s.notifier != nil && len(result.Fresh) > 0 {
		if err := s.notifier.Notify(result.Fresh); err != nil {
			s.logger.Error("notification failed", "error", err)
		}
	}
}
