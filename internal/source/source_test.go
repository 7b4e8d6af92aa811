package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmillar/jobpulse/internal/model"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// redirectClient rewrites every request to hit the given test server,
// regardless of the URL the fetcher built.
func redirectClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGreenhouseFetch(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Software Engineer",
				"location": {"name": "San Francisco, CA"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"updated_at": "2026-03-09T10:00:00Z",
				"created_at": "2026-03-01T08:00:00Z"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewGreenhouseFetcher("acme", "Acme Corp", redirectClient(srv))
	entries, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Source != "greenhouse" {
		t.Errorf("source = %q", e.Source)
	}
	if e.Title != "Software Engineer" || e.Company != "Acme Corp" {
		t.Errorf("title/company = %q/%q", e.Title, e.Company)
	}
	if e.Location != "San Francisco, CA" {
		t.Errorf("location = %q", e.Location)
	}
	if e.Board == nil || e.Board.UpdatedAt != "2026-03-09T10:00:00Z" || e.Board.CreatedAt != "2026-03-01T08:00:00Z" {
		t.Errorf("board fields = %+v", e.Board)
	}
	if e.Payload["id"] != float64(12345) {
		t.Errorf("payload not preserved: %v", e.Payload)
	}
}

func TestLeverFetch(t *testing.T) {
	payload := `[
		{
			"id": "abc-123",
			"text": "Platform Engineer",
			"descriptionPlain": "Build the platform.",
			"categories": {"location": "Remote", "allLocations": ["Remote", "NYC"]},
			"createdAt": 1705315200000,
			"hostedUrl": "https://jobs.lever.co/acme/abc-123"
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewLeverFetcher("acme", "Acme Corp", redirectClient(srv))
	entries, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Source != "lever" || e.Title != "Platform Engineer" {
		t.Errorf("source/title = %q/%q", e.Source, e.Title)
	}
	if e.Location != "Remote, NYC" {
		t.Errorf("location = %q, want joined allLocations", e.Location)
	}
	if e.Posting == nil || e.Posting.CreatedAtMillis != 1705315200000 {
		t.Errorf("posting fields = %+v", e.Posting)
	}
	if e.Description != "Build the platform." {
		t.Errorf("description = %q", e.Description)
	}
}

func TestRSSFetch(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Jobs Feed</title>
    <item>
      <title>Backend Engineer at Initech (Remote)</title>
      <link>https://example.com/jobs/77?utm_source=rss</link>
      <description>&lt;p&gt;Great role.&lt;/p&gt;</description>
      <pubDate>Mon, 09 Mar 2026 10:00:00 GMT</pubDate>
      <guid>77</guid>
    </item>
  </channel>
</rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := NewRSSFetcher("linkedin_rss", srv.URL, srv.Client())
	entries, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Source != "linkedin_rss" {
		t.Errorf("source = %q", e.Source)
	}
	if e.Title != "Backend Engineer at Initech (Remote)" {
		t.Errorf("title = %q", e.Title)
	}
	if e.URL != "https://example.com/jobs/77?utm_source=rss" {
		t.Errorf("url = %q", e.URL)
	}
	if e.Feed == nil || e.Feed.Published != "Mon, 09 Mar 2026 10:00:00 GMT" {
		t.Errorf("feed fields = %+v", e.Feed)
	}
	if e.Description != "<p>Great role.</p>" {
		t.Errorf("description = %q", e.Description)
	}
}

func TestFetchErrorStatusMapsToHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewLeverFetcher("acme", "Acme Corp", redirectClient(srv))
	_, err := f.Fetch(context.Background())

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 30 {
		t.Errorf("retry-after = %v", httpErr.RetryAfter)
	}
}

type stubFetcher struct {
	name    string
	entries []model.RawEntry
	err     error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	return s.entries, s.err
}

func TestFetchAllMergesInFetcherOrder(t *testing.T) {
	fetchers := []model.SourceFetcher{
		&stubFetcher{name: "a", entries: []model.RawEntry{{Source: "a", Title: "1"}, {Source: "a", Title: "2"}}},
		&stubFetcher{name: "b", err: errors.New("boom")},
		&stubFetcher{name: "c", entries: []model.RawEntry{{Source: "c", Title: "3"}}},
	}

	got := FetchAll(context.Background(), fetchers, discardLogger())
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	wantTitles := []string{"1", "2", "3"}
	for i, w := range wantTitles {
		if got[i].Title != w {
			t.Errorf("position %d: got %q, want %q", i, got[i].Title, w)
		}
	}
}
