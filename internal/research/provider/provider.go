// Package provider adapts external AI backends to a single callable
// surface: prompt in, parsed JSON object out, typed failure otherwise.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// ID identifies an AI backend.
type ID string

const (
	Gemini     ID = "gemini"
	Perplexity ID = "perplexity"
	Claude     ID = "claude"
)

// All lists the known provider IDs in default preference order.
var All = []ID{Gemini, Perplexity, Claude}

// Valid reports whether id names a known provider.
func (id ID) Valid() bool {
	switch id {
	case Gemini, Perplexity, Claude:
		return true
	}
	return false
}

// FailureCause classifies an adapter failure.
type FailureCause string

const (
	CauseMissingCredentials FailureCause = "missing_credentials"
	CauseNoTextReturned     FailureCause = "no_text_returned"
	CauseUnparsableJSON     FailureCause = "unparsable_json"
	CauseUpstreamHTTPError  FailureCause = "upstream_http_error"
)

// CallError is the typed failure returned by every adapter.
type CallError struct {
	Provider ID
	Cause    FailureCause
	Err      error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Cause)
}

func (e *CallError) Unwrap() error { return e.Err }

// CauseOf returns the failure cause in err's chain, or "" if none.
func CauseOf(err error) FailureCause {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Cause
	}
	return ""
}

// IsMissingCredentials reports whether err is a credentials-absent skip.
// Deployments with partial provider coverage hit this on every call, so
// the router treats it as expected and does not log it as an error.
func IsMissingCredentials(err error) bool {
	return CauseOf(err) == CauseMissingCredentials
}

// Provider is a single external AI backend. Generate sends the prompt,
// extracts the first balanced JSON object from the response text, and
// parses it. Implementations are stateless; timeouts come from ctx.
type Provider interface {
	ID() ID
	Generate(ctx context.Context, prompt string) (map[string]any, error)
}
