package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/DavidEscobar2707/bta-onboarding/pkg/firecrawl"
)

// FirecrawlFetcher is the paid last-resort fetcher for pages both the
// local fetcher and Jina fail on.
type FirecrawlFetcher struct {
	client firecrawl.Client
}

// NewFirecrawlFetcher wraps a Firecrawl client.
func NewFirecrawlFetcher(client firecrawl.Client) *FirecrawlFetcher {
	return &FirecrawlFetcher{client: client}
}

func (f *FirecrawlFetcher) Name() string    { return "firecrawl" }
func (f *FirecrawlFetcher) Available() bool { return f.client != nil }

func (f *FirecrawlFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if f.client == nil {
		return nil, eris.New("firecrawl: no client configured")
	}

	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl: scrape")
	}
	if resp == nil || resp.Data.Markdown == "" {
		return nil, eris.New("firecrawl: empty content")
	}

	return &Page{
		URL:        targetURL,
		Title:      resp.Data.Title,
		Text:       resp.Data.Markdown,
		StatusCode: resp.Data.StatusCode,
		Source:     "firecrawl",
	}, nil
}
