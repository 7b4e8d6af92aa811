// Package normalize maps raw, source-tagged entries into canonical Job
// records. One bad entry is skipped and logged; it never aborts the batch.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmillar/jobpulse/internal/identity"
	"github.com/dmillar/jobpulse/internal/model"
)

// ErrRejected marks an entry that is missing a mandatory field after
// trimming. Callers treat it as a structured skip, not a failure.
var ErrRejected = errors.New("entry rejected")

// Normalizer converts RawEntry values into Jobs. The clock is injectable so
// FetchedAt is testable.
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
}

func New(logger *slog.Logger) *Normalizer {
	return NewWithClock(logger, func() time.Time { return time.Now().UTC() })
}

// NewWithClock is New with an explicit clock.
func NewWithClock(logger *slog.Logger, now func() time.Time) *Normalizer {
	return &Normalizer{logger: logger, now: now}
}

// Entry normalizes a single raw entry into a Job. Rejection (missing
// source, title, or URL) returns an error wrapping ErrRejected.
func (n *Normalizer) Entry(e model.RawEntry) (model.Job, error) {
	source := strings.TrimSpace(e.Source)
	title := strings.TrimSpace(e.Title)
	rawURL := strings.TrimSpace(e.URL)

	switch {
	case source == "":
		return model.Job{}, fmt.Errorf("missing source: %w", ErrRejected)
	case title == "":
		return model.Job{}, fmt.Errorf("missing title: %w", ErrRejected)
	case rawURL == "":
		return model.Job{}, fmt.Errorf("missing url: %w", ErrRejected)
	}

	company := strings.TrimSpace(e.Company)
	if company == "" {
		company = extractCompanyFromTitle(title)
	}
	if company == "" {
		n.logger.Debug("no company found, using Unknown", "title", title)
		company = "Unknown"
	}

	location := strings.TrimSpace(e.Location)
	if location == "" {
		location = extractLocationFromTitle(title)
	}

	job := model.Job{
		JobID:       identity.MakeJobID(company, title, rawURL),
		Source:      source,
		Title:       title,
		Company:     company,
		Location:    location,
		Remote:      isRemote(title, location),
		URL:         rawURL,
		Description: stripHTML(e.Description),
		PostedAt:    n.postedAt(source, e),
		FetchedAt:   n.now(),
		Raw:         e.Payload,
	}
	if job.Raw == nil {
		job.Raw = envelopePayload(e)
	}
	return job, nil
}

// All normalizes a batch with a continue-on-error policy: invalid entries
// are skipped with a debug log and the rest proceed.
func (n *Normalizer) All(entries []model.RawEntry) []model.Job {
	jobs := make([]model.Job, 0, len(entries))
	for _, e := range entries {
		job, err := n.Entry(e)
		if err != nil {
			n.logger.Debug("skipping entry", "source", e.Source, "title", e.Title, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	n.logger.Info("normalized entries", "in", len(entries), "out", len(jobs))
	return jobs
}

// postedAt resolves the posting timestamp using the date rules of the
// connector family named by the source tag. Anything unparsable resolves to
// nil, which downstream excludes as "cannot verify" rather than failing.
func (n *Normalizer) postedAt(source string, e model.RawEntry) *time.Time {
	switch strings.ToLower(source) {
	case "greenhouse":
		if e.Board == nil {
			return nil
		}
		return n.boardPostedAt(e.Board)
	case "lever":
		if e.Posting == nil || e.Posting.CreatedAtMillis <= 0 {
			return nil
		}
		t := time.UnixMilli(e.Posting.CreatedAtMillis).UTC()
		return &t
	default:
		if e.Feed == nil {
			return nil
		}
		return n.feedPostedAt(e.Feed)
	}
}

func (n *Normalizer) feedPostedAt(f *model.FeedFields) *time.Time {
	if f.PublishedParsed != nil {
		t := f.PublishedParsed.UTC()
		return &t
	}
	if f.Published == "" {
		return nil
	}
	t, hadZone, ok := parseLenient(f.Published)
	if !ok {
		n.logger.Debug("unparsable published date", "published", f.Published)
		return nil
	}
	if !hadZone {
		n.logger.Warn("timezone-naive published date, treating as UTC", "published", f.Published)
	}
	return &t
}

// boardPostedAt prefers updated_at, unless created_at exists and is more
// than 24 hours older; then updated_at was likely a metadata touch and
// created_at is the true posting time.
func (n *Normalizer) boardPostedAt(b *model.BoardFields) *time.Time {
	var updated, created *time.Time
	if b.UpdatedAt != "" {
		if t, _, ok := parseLenient(b.UpdatedAt); ok {
			updated = &t
		} else {
			n.logger.Debug("unparsable updated_at", "updated_at", b.UpdatedAt)
		}
	}
	if b.CreatedAt != "" {
		if t, _, ok := parseLenient(b.CreatedAt); ok {
			created = &t
		} else {
			n.logger.Debug("unparsable created_at", "created_at", b.CreatedAt)
		}
	}

	if updated != nil {
		if created != nil && created.Before(updated.Add(-24*time.Hour)) {
			return created
		}
		return updated
	}
	return created
}

// isRemote reports whether "remote" occurs in title or location,
// case-insensitively. Remote is always derived, never source-supplied.
func isRemote(title, location string) bool {
	return strings.Contains(strings.ToLower(title), "remote") ||
		strings.Contains(strings.ToLower(location), "remote")
}

// stripHTML reduces an HTML fragment to plain text with single-space
// separated words. Plain-text input passes through unchanged apart from
// whitespace collapsing.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// envelopePayload reconstructs an audit payload for connectors that did not
// attach the original record.
func envelopePayload(e model.RawEntry) map[string]any {
	p := map[string]any{
		"source": e.Source,
		"title":  e.Title,
		"url":    e.URL,
	}
	if e.Company != "" {
		p["company"] = e.Company
	}
	if e.Location != "" {
		p["location"] = e.Location
	}
	return p
}
