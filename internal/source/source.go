// Package source holds the connector fetchers. Each fetcher pulls one
// upstream (a board API, a postings API, or an RSS feed) and emits raw,
// source-tagged entries for the normalizer; no canonicalization happens
// here.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmillar/jobpulse/internal/model"
)

// get issues a GET and returns the response body, mapping non-200 statuses
// to HTTPError so retry logic can classify them. name and target only feed
// error messages.
func get(ctx context.Context, client *http.Client, url, name, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: %w", name, target, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: %w", name, target, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s fetch for %s: unexpected status %d", name, target, resp.StatusCode),
		}
	}

	return resp.Body, nil
}

// parseRetryAfter parses a Retry-After header in seconds format.
// Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
