package source

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmillar/jobpulse/internal/model"
)

const fetchTimeout = 2 * time.Minute

// FetchAll fans out to every fetcher concurrently and merges the results
// into one sequence, ordered by fetcher position so a run is deterministic
// for a given configuration. A failing source logs and contributes nothing;
// it never cancels its siblings — one dead feed degrades completeness, not
// the run.
func FetchAll(ctx context.Context, fetchers []model.SourceFetcher, logger *slog.Logger) []model.RawEntry {
	results := make([][]model.RawEntry, len(fetchers))

	var g errgroup.Group
	for i, f := range fetchers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			entries, err := f.Fetch(fctx)
			if err != nil {
				logger.Error("source fetch failed", "source", f.Name(), "error", err)
				return nil
			}
			logger.Info("source fetched", "source", f.Name(), "entries", len(entries))
			results[i] = entries
			return nil
		})
	}
	_ = g.Wait()

	var merged []model.RawEntry
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged
}
