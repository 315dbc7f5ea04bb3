package scrape

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher is a scripted Fetcher for chain tests.
type stubFetcher struct {
	name      string
	available bool
	page      *Page
	err       error
	calls     int
}

func (s *stubFetcher) Name() string    { return s.name }
func (s *stubFetcher) Available() bool { return s.available }

func (s *stubFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := *s.page
	p.URL = targetURL
	return &p, nil
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &stubFetcher{name: "first", available: true, page: &Page{Text: "from first", Source: "first"}}
	second := &stubFetcher{name: "second", available: true, page: &Page{Text: "from second", Source: "second"}}

	page, err := NewChain(first, second).Fetch(context.Background(), "https://acme.io")
	require.NoError(t, err)
	assert.Equal(t, "from first", page.Text)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughFailures(t *testing.T) {
	first := &stubFetcher{name: "first", available: true, err: eris.New("blocked")}
	second := &stubFetcher{name: "second", available: true, page: &Page{Text: "from second", Source: "second"}}

	page, err := NewChain(first, second).Fetch(context.Background(), "https://acme.io")
	require.NoError(t, err)
	assert.Equal(t, "from second", page.Text)
	assert.Equal(t, 1, first.calls)
}

func TestChainSkipsUnavailableFetchers(t *testing.T) {
	down := &stubFetcher{name: "down", available: false, page: &Page{Text: "never"}}
	up := &stubFetcher{name: "up", available: true, page: &Page{Text: "from up"}}

	page, err := NewChain(down, up).Fetch(context.Background(), "https://acme.io")
	require.NoError(t, err)
	assert.Equal(t, "from up", page.Text)
	assert.Equal(t, 0, down.calls)
}

func TestChainAllFail(t *testing.T) {
	first := &stubFetcher{name: "first", available: true, err: eris.New("blocked")}
	second := &stubFetcher{name: "second", available: true, err: eris.New("timeout")}

	_, err := NewChain(first, second).Fetch(context.Background(), "https://acme.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all fetchers failed")
}

func TestChainNoFetcherAvailable(t *testing.T) {
	down := &stubFetcher{name: "down", available: false}

	_, err := NewChain(down).Fetch(context.Background(), "https://acme.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fetcher available")
}

func TestChainFetchAllSkipsFailedURLs(t *testing.T) {
	flaky := &stubFetcher{name: "flaky", available: true, err: eris.New("blocked")}
	chain := NewChain(flaky)

	pages := chain.FetchAll(context.Background(), []string{"https://a.com", "https://b.com"}, 2)
	assert.Empty(t, pages)
	assert.Equal(t, 2, flaky.calls)

	ok := &stubFetcher{name: "ok", available: true, page: &Page{Text: "content"}}
	pages = NewChain(ok).FetchAll(context.Background(), []string{"https://a.com", "https://b.com"}, 2)
	assert.Len(t, pages, 2)
}
