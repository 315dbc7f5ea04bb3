// Package scrape fetches a company's own web pages and distills them
// into the structural context that seeds research prompts.
package scrape

import "context"

// Page is one fetched page reduced to plaintext.
type Page struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
	Source     string
}

// Fetcher retrieves a single URL as plaintext. Available lets a fetcher
// take itself out of rotation (open circuit, missing key).
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Name() string
	Available() bool
}
