// Package retry decorates a source fetcher with bounded retries for
// transient upstream failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmillar/jobpulse/internal/model"
)

// Fetcher wraps a SourceFetcher and retries transient failures with
// exponential backoff and jitter.
type Fetcher struct {
	inner      model.SourceFetcher
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// Wrap decorates a fetcher with retry logic. maxRetries is the number of
// additional attempts after the first failure; baseDelay is the delay
// before the first retry, doubled on each subsequent one.
func Wrap(inner model.SourceFetcher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

func (f *Fetcher) Name() string { return f.inner.Name() }

// Fetch delegates to the wrapped fetcher, retrying on transient errors.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	entries, err := f.inner.Fetch(ctx)
	if err == nil {
		return entries, nil
	}

	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		delay := f.backoffDelay(attempt, lastErr)

		f.logger.Warn("retrying after transient error",
			"source", f.inner.Name(),
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		entries, err = f.inner.Fetch(ctx)
		if err == nil {
			return entries, nil
		}

		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration from the upstream takes precedence.
func (f *Fetcher) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := f.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable reports whether the error is a transient failure worth
// retrying. Rate limits and server errors are; other HTTP statuses and
// cancelled contexts are not. Non-HTTP errors (network, DNS) are assumed
// transient.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		return httpErr.StatusCode >= 500
	}

	return true
}
