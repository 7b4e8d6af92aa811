package model

import (
	"context"
	"time"
)

// Job is the canonical record every source is reconciled into. JobID is a
// pure function of (company, title, canonical URL), so re-normalizing the
// same source content always yields the same identity.
type Job struct {
	JobID       string         // sha256 fingerprint, primary key
	Source      string         // originating connector tag
	Title       string         // required
	Company     string         // required ("Unknown" when nothing qualifies)
	Location    string         // optional free text
	Remote      bool           // derived from title/location, never source-supplied
	URL         string         // identity input when present
	Description string         // HTML-stripped plain text
	PostedAt    *time.Time     // nullable; a nil PostedAt never passes the freshness filter
	FetchedAt   time.Time      // wall-clock UTC at normalization; upsert recency signal
	Tags        []string       // matched keywords, first-match order
	Score       int            // deterministic relevance score
	Raw         map[string]any // original source payload, kept for audit
}

// SourceFetcher fetches one batch of raw entries from a single source.
type SourceFetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]RawEntry, error)
}

// Notifier announces newly stored jobs.
type Notifier interface {
	Notify(jobs []Job) error
}
