// Package pipeline runs one batch through the whole reconciliation chain:
// normalize, deduplicate, tag and score, persist, then report the ranked
// fresh view. It holds no state between runs beyond the store.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmillar/jobpulse/internal/freshness"
	"github.com/dmillar/jobpulse/internal/identity"
	"github.com/dmillar/jobpulse/internal/model"
	"github.com/dmillar/jobpulse/internal/normalize"
	"github.com/dmillar/jobpulse/internal/rank"
)

// Options is the configuration the core consumes. It is an explicit value
// passed in at construction, so pipelines with different options can run
// side by side.
type Options struct {
	MaxAgeHours int      // freshness window; must be positive
	Keywords    []string // tagging keywords; may be empty
}

func (o Options) Validate() error {
	if o.MaxAgeHours <= 0 {
		return fmt.Errorf("max age hours must be positive, got %d", o.MaxAgeHours)
	}
	return nil
}

// JobStore is the persistence surface the pipeline writes through.
type JobStore interface {
	Upsert(jobs []model.Job) (inserted, updated int, err error)
}

// Result summarizes one run. Fresh is the ranked fresh view of this run's
// jobs; storage additionally retains jobs with no posted_at for audit.
type Result struct {
	Received   int
	Normalized int
	Duplicates int
	Inserted   int
	Updated    int
	Fresh      []model.Job
}

// Pipeline is a single-threaded batch transformation over raw entries.
type Pipeline struct {
	normalizer *normalize.Normalizer
	store      JobStore
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

func New(store JobStore, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline options: %w", err)
	}
	return &Pipeline{
		normalizer: normalize.New(logger),
		store:      store,
		opts:       opts,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run consumes one batch of raw entries and produces one batch of persisted
// jobs. Malformed entries degrade completeness, never correctness: they are
// skipped inside normalization. A storage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, entries []model.RawEntry) (Result, error) {
	jobs := p.normalizer.All(entries)
	unique := identity.Deduplicate(jobs)

	tagged := make([]model.Job, 0, len(unique))
	for _, job := range unique {
		t := rank.Tag(job, p.opts.Keywords)
		t.Score = rank.Score(t)
		tagged = append(tagged, t)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("pipeline run: %w", err)
	}

	// Everything deduplicated is persisted, including jobs with no
	// posted_at: storage keeps them for audit even though the fresh view
	// below never shows them.
	inserted, updated, err := p.store.Upsert(tagged)
	if err != nil {
		return Result{}, fmt.Errorf("persisting jobs: %w", err)
	}

	ranked := rank.Sort(freshness.FilterFresh(tagged, p.now(), p.opts.MaxAgeHours))

	res := Result{
		Received:   len(entries),
		Normalized: len(jobs),
		Duplicates: len(jobs) - len(unique),
		Inserted:   inserted,
		Updated:    updated,
		Fresh:      ranked,
	}
	p.logger.Info("pipeline run complete",
		"received", res.Received,
		"normalized", res.Normalized,
		"duplicates", res.Duplicates,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"fresh", len(res.Fresh),
	)
	return res, nil
}
