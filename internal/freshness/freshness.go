// Package freshness decides whether a posting is recent enough to surface.
// Freshness is about posted_at; it is a different axis from the store's
// fetched_at recency window and the two must not be conflated.
package freshness

import (
	"time"

	"github.com/dmillar/jobpulse/internal/model"
)

// IsFresh reports whether postedAt falls within maxAgeHours of now. The
// boundary is inclusive: a job posted exactly maxAgeHours ago is fresh.
// Both times are compared in UTC.
func IsFresh(postedAt, now time.Time, maxAgeHours int) bool {
	cutoff := now.UTC().Add(-time.Duration(maxAgeHours) * time.Hour)
	return !postedAt.UTC().Before(cutoff)
}

// FilterFresh keeps jobs posted within maxAgeHours of now. Jobs with no
// posted_at are dropped unconditionally: missing data means "cannot
// verify", never "assume fresh".
func FilterFresh(jobs []model.Job, now time.Time, maxAgeHours int) []model.Job {
	fresh := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.PostedAt == nil {
			continue
		}
		if IsFresh(*job.PostedAt, now, maxAgeHours) {
			fresh = append(fresh, job)
		}
	}
	return fresh
}
