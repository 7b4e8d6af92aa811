// Package rank annotates jobs with matched keywords and orders a job set by
// a deterministic relevance score.
package rank

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dmillar/jobpulse/internal/model"
)

// Tag returns a copy of job with Tags recomputed from keywords: each
// keyword is matched case-insensitively as a substring against title, then
// company, then location, accumulating unique matches in first-seen order.
// Tagging is a full recomputation, so an empty keyword list clears any
// prior tags. The input job is never modified.
func Tag(job model.Job, keywords []string) model.Job {
	tagged := job
	tagged.Tags = nil
	if len(keywords) == 0 {
		return tagged
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	var tags []string
	seen := make(map[string]bool)
	for _, field := range []string{job.Title, job.Company, job.Location} {
		if field == "" {
			continue
		}
		haystack := strings.ToLower(field)
		for _, kw := range lowered {
			if !seen[kw] && strings.Contains(haystack, kw) {
				seen[kw] = true
				tags = append(tags, kw)
			}
		}
	}

	tagged.Tags = tags
	return tagged
}

// Score computes the deterministic relevance score: +3 for any tags, +2 for
// remote, +1 when the job was posted strictly less than 6 hours before it
// was fetched.
func Score(job model.Job) int {
	score := 0
	if len(job.Tags) > 0 {
		score += 3
	}
	if job.Remote {
		score += 2
	}
	if job.PostedAt != nil && !job.FetchedAt.IsZero() {
		if job.FetchedAt.UTC().Sub(job.PostedAt.UTC()) < 6*time.Hour {
			score++
		}
	}
	return score
}

// Sort returns a new slice ordered by score descending, then posted_at
// descending. Jobs without posted_at sort last. Ties beyond the two keys
// keep their input order.
func Sort(jobs []model.Job) []model.Job {
	sorted := make([]model.Job, len(jobs))
	copy(sorted, jobs)

	key := func(j model.Job) (int, int64) {
		posted := int64(math.MinInt64)
		if j.PostedAt != nil {
			posted = j.PostedAt.UTC().Unix()
		}
		return Score(j), posted
	}

	sort.SliceStable(sorted, func(i, k int) bool {
		si, pi := key(sorted[i])
		sk, pk := key(sorted[k])
		if si != sk {
			return si > sk
		}
		return pi > pk
	})
	return sorted
}
