// Package ratelimit throttles outbound requests per upstream provider so a
// run with many configured boards stays polite to the shared APIs.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/dmillar/jobpulse/internal/model"
)

// ProviderLimiter keeps one token bucket per provider name. All fetchers
// hitting the same provider (e.g. every Greenhouse board) share a bucket.
type ProviderLimiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewProviderLimiter builds a limiter allowing reqPerSec sustained requests
// per provider with the given burst.
func NewProviderLimiter(reqPerSec float64, burst int) *ProviderLimiter {
	return &ProviderLimiter{
		m:     make(map[string]*rate.Limiter),
		limit: rate.Limit(reqPerSec),
		burst: burst,
	}
}

func (p *ProviderLimiter) limiterFor(provider string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.m[provider]; ok {
		return lim
	}
	lim := rate.NewLimiter(p.limit, p.burst)
	p.m[provider] = lim
	return lim
}

// Wait blocks until the provider's bucket permits a request or the context
// is cancelled.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if err := p.limiterFor(provider).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", provider, err)
	}
	return nil
}

// Fetcher is a decorator that waits on the shared limiter before
// delegating to the wrapped fetcher.
type Fetcher struct {
	inner    model.SourceFetcher
	limiter  *ProviderLimiter
	provider string
}

// Wrap decorates a fetcher with provider-level rate limiting. Fetchers
// targeting the same provider should share the limiter instance.
func Wrap(inner model.SourceFetcher, limiter *ProviderLimiter, provider string) *Fetcher {
	return &Fetcher{inner: inner, limiter: limiter, provider: provider}
}

func (f *Fetcher) Name() string { return f.inner.Name() }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	if err := f.limiter.Wait(ctx, f.provider); err != nil {
		return nil, err
	}
	return f.inner.Fetch(ctx)
}
