package scrape

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Chain tries fetchers in priority order, returning the first success.
// A shared rate limiter paces outbound requests across all fetchers so
// concurrent page fan-out does not hammer the subject's site.
type Chain struct {
	fetchers []Fetcher
	limiter  *rate.Limiter
}

// NewChain creates a Chain over the given fetchers. Fetchers are tried
// in order per URL.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{
		fetchers: fetchers,
		limiter:  rate.NewLimiter(rate.Limit(4), 4),
	}
}

// Fetch tries each available fetcher in order for a single URL.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scrape: rate limit wait")
	}

	var lastErr error
	for _, f := range c.fetchers {
		if !f.Available() {
			continue
		}
		page, err := f.Fetch(ctx, targetURL)
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("scrape: fetcher failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all fetchers failed")
	}
	return nil, eris.Errorf("scrape: no fetcher available for %s", targetURL)
}

// FetchAll fetches URLs in parallel through the chain. Failed URLs are
// skipped; order of results is not guaranteed.
func (c *Chain) FetchAll(ctx context.Context, urls []string, maxConcurrent int) []Page {
	var (
		mu    sync.Mutex
		pages []Page
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for _, u := range urls {
		g.Go(func() error {
			page, err := c.Fetch(gctx, u)
			if err != nil {
				zap.L().Debug("scrape: url skipped", zap.String("url", u), zap.Error(err))
				return nil
			}
			mu.Lock()
			pages = append(pages, *page)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return pages
}
