package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dmillar/jobpulse/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(id string, fetchedAt time.Time) model.Job {
	return model.Job{
		JobID:     id,
		Source:    "greenhouse",
		Title:     "Software Engineer",
		Company:   "Acme",
		Location:  "Remote, US",
		Remote:    true,
		URL:       "https://boards.greenhouse.io/acme/jobs/1",
		FetchedAt: fetchedAt,
		Tags:      []string{"go", "backend"},
		Raw:       map[string]any{"id": "1"},
	}
}

func TestUpsertInsertThenGet(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	posted := now.Add(-2 * time.Hour)

	job := testJob("job-1", now)
	job.PostedAt = &posted
	job.Score = 5

	inserted, updated, err := s.Upsert([]model.Job{job})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if inserted != 1 || updated != 0 {
		t.Fatalf("inserted=%d updated=%d, want 1/0", inserted, updated)
	}

	got, err := s.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != job.Title || got.Company != job.Company || got.Location != job.Location {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if !got.Remote || got.Score != 5 {
		t.Errorf("remote/score mismatch: %+v", got)
	}
	if got.PostedAt == nil || !got.PostedAt.Equal(posted) {
		t.Errorf("posted_at = %v, want %v", got.PostedAt, posted)
	}
	if !got.FetchedAt.Equal(now) {
		t.Errorf("fetched_at = %v, want %v", got.FetchedAt, now)
	}
	if !reflect.DeepEqual(got.Tags, []string{"go", "backend"}) {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Raw["id"] != "1" {
		t.Errorf("raw = %v", got.Raw)
	}
}

func TestUpsertNewerFetchWins(t *testing.T) {
	s := newTestStore(t)
	earlier := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	first := testJob("job-2", earlier)
	if _, _, err := s.Upsert([]model.Job{first}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	second := testJob("job-2", later)
	second.Title = "Senior Software Engineer"
	inserted, updated, err := s.Upsert([]model.Job{second})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if inserted != 0 || updated != 1 {
		t.Fatalf("inserted=%d updated=%d, want 0/1", inserted, updated)
	}

	got, err := s.Get("job-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Senior Software Engineer" {
		t.Errorf("title = %q, want the newer value", got.Title)
	}
	if !got.FetchedAt.Equal(later) {
		t.Errorf("fetched_at = %v, want %v", got.FetchedAt, later)
	}
}

func TestUpsertNonNewerFetchSkipped(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if _, _, err := s.Upsert([]model.Job{testJob("job-3", now)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Same fetched_at: not strictly newer, must be silently skipped.
	stale := testJob("job-3", now)
	stale.Title = "Should Not Appear"
	inserted, updated, err := s.Upsert([]model.Job{stale})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if inserted != 0 || updated != 0 {
		t.Fatalf("inserted=%d updated=%d, want 0/0", inserted, updated)
	}

	older := testJob("job-3", now.Add(-time.Hour))
	older.Title = "Definitely Not"
	if _, updated, err = s.Upsert([]model.Job{older}); err != nil || updated != 0 {
		t.Fatalf("older upsert: updated=%d err=%v", updated, err)
	}

	got, err := s.Get("job-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Software Engineer" {
		t.Errorf("stored record changed: title = %q", got.Title)
	}
}

func TestUpsertPreservesPostedAt(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	posted := now.Add(-3 * time.Hour)

	first := testJob("job-4", now)
	first.PostedAt = &posted
	if _, _, err := s.Upsert([]model.Job{first}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Newer fetch with no posted_at must not erase the stored one.
	second := testJob("job-4", now.Add(time.Hour))
	second.PostedAt = nil
	if _, _, err := s.Upsert([]model.Job{second}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Get("job-4")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PostedAt == nil || !got.PostedAt.Equal(posted) {
		t.Errorf("posted_at = %v, want preserved %v", got.PostedAt, posted)
	}

	// A non-null incoming posted_at does overwrite.
	newer := now.Add(-time.Hour)
	third := testJob("job-4", now.Add(2*time.Hour))
	third.PostedAt = &newer
	if _, _, err := s.Upsert([]model.Job{third}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, _ = s.Get("job-4")
	if got.PostedAt == nil || !got.PostedAt.Equal(newer) {
		t.Errorf("posted_at = %v, want overwritten %v", got.PostedAt, newer)
	}
}

func TestUpsertMonotonicCounts(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		job := testJob("job-5", base.Add(time.Duration(i)*time.Minute))
		inserted, updated, err := s.Upsert([]model.Job{job})
		if err != nil {
			t.Fatalf("Upsert %d: %v", i, err)
		}
		if i == 1 && (inserted != 1 || updated != 0) {
			t.Errorf("run 1: inserted=%d updated=%d", inserted, updated)
		}
		if i > 1 && (inserted != 0 || updated != 1) {
			t.Errorf("run %d: inserted=%d updated=%d", i, inserted, updated)
		}
	}
}

func TestLoadRecentWindow(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	recent := testJob("recent", now.Add(-1*time.Hour))
	older := testJob("older", now.Add(-10*time.Hour))
	ancient := testJob("ancient", now.Add(-80*time.Hour))
	if _, _, err := s.Upsert([]model.Job{older, ancient, recent}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	jobs, err := s.LoadRecent(24)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs in 24h window, got %d", len(jobs))
	}
	// Ordered by fetched_at descending.
	if jobs[0].JobID != "recent" || jobs[1].JobID != "older" {
		t.Errorf("unexpected order: [%s %s]", jobs[0].JobID, jobs[1].JobID)
	}
}

func TestLoadRecentIgnoresPostedAt(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	// Fetched just now but with no posted_at at all: recency loading is
	// about fetched_at, so it must still come back.
	job := testJob("undated", now.Add(-time.Minute))
	job.PostedAt = nil
	if _, _, err := s.Upsert([]model.Job{job}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	jobs, err := s.LoadRecent(24)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if len(jobs) != 1 || jobs[0].JobID != "undated" {
		t.Fatalf("expected the undated job, got %+v", jobs)
	}
}

func TestGetUnknownReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertNullFieldRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	job := model.Job{
		JobID:     "bare",
		Source:    "lever",
		Title:     "Engineer",
		Company:   "Unknown",
		FetchedAt: now,
	}
	if _, _, err := s.Upsert([]model.Job{job}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Get("bare")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Location != "" || got.URL != "" || got.Description != "" {
		t.Errorf("expected empty optional fields, got %+v", got)
	}
	if got.PostedAt != nil {
		t.Errorf("expected nil posted_at, got %v", got.PostedAt)
	}
	if len(got.Tags) != 0 || got.Raw != nil {
		t.Errorf("expected empty tags/raw, got %v / %v", got.Tags, got.Raw)
	}
}
