package research

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/research/provider"
)

// ErrAllProvidersFailed is returned when every candidate provider in the
// chain failed or was skipped for a call.
var ErrAllProvidersFailed = eris.New("all research providers failed")

// quotaMarkers classify an upstream error as quota/rate exhaustion. The
// check is a case-insensitive substring scan because each vendor words
// these errors differently and none expose a stable code through their
// SDKs.
var quotaMarkers = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"free_tier",
	"resource_exhausted",
	"too many requests",
	"429",
}

// IsQuotaExhausted reports whether err looks like quota or rate-limit
// exhaustion rather than a transient upstream fault.
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// CallOptions tune a single routed call. The Skip set is threaded
// explicitly by the caller: providers that proved dead earlier in the
// same run are excluded here instead of through any shared router state,
// so concurrent runs never see each other's failures.
type CallOptions struct {
	// Timeout bounds each individual provider attempt. Zero means the
	// parent context alone bounds the call.
	Timeout time.Duration

	// Skip excludes providers from the candidate chain for this call.
	Skip map[provider.ID]bool

	// OnPrimaryFailure is invoked when the first candidate in the chain
	// fails, before any fallback attempt. Used by callers to record the
	// provider in their skip set for subsequent calls in the same run.
	OnPrimaryFailure func(id provider.ID, err error)
}

// Router resolves which provider answers a research prompt. Attempts are
// strictly sequential: the preferred provider first, then the remaining
// registered providers in fixed order, stopping at the first success.
type Router struct {
	providers map[provider.ID]provider.Provider
	primary   provider.ID
	fallback  bool
	order     []provider.ID
}

// NewRouter builds a router over the given providers. primary is tried
// first on every call; when fallbackEnabled is false a primary failure
// is terminal.
func NewRouter(providers []provider.Provider, primary provider.ID, fallbackEnabled bool) *Router {
	byID := make(map[provider.ID]provider.Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}
	return &Router{
		providers: byID,
		primary:   primary,
		fallback:  fallbackEnabled,
		order:     provider.All,
	}
}

// Primary returns the preferred provider ID.
func (r *Router) Primary() provider.ID { return r.primary }

// candidates returns the attempt order for one call: primary first, then
// the remaining registered providers in declaration order, minus the
// skip set.
func (r *Router) candidates(skip map[provider.ID]bool) []provider.ID {
	var out []provider.ID
	appendID := func(id provider.ID) {
		if skip[id] {
			return
		}
		if _, registered := r.providers[id]; !registered {
			return
		}
		for _, existing := range out {
			if existing == id {
				return
			}
		}
		out = append(out, id)
	}
	appendID(r.primary)
	if r.fallback {
		for _, id := range r.order {
			appendID(id)
		}
	}
	return out
}

// Call routes one prompt through the provider chain. label names the
// call for logs (e.g. "lite", "master", "competitor"). On success it
// returns the parsed JSON object and the provider that produced it.
func (r *Router) Call(ctx context.Context, prompt, label string, opts CallOptions) (map[string]any, provider.ID, error) {
	chain := r.candidates(opts.Skip)
	if len(chain) == 0 {
		return nil, "", eris.Wrap(ErrAllProvidersFailed, "no providers available for "+label)
	}

	var lastErr error
	for i, id := range chain {
		p := r.providers[id]

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if opts.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		}

		start := time.Now()
		obj, err := p.Generate(attemptCtx, prompt)
		cancel()
		elapsed := time.Since(start)

		if err == nil {
			zap.L().Info("research call succeeded",
				zap.String("label", label),
				zap.String("provider", string(id)),
				zap.Duration("duration", elapsed),
				zap.Int("attempt", i+1),
			)
			return obj, id, nil
		}

		lastErr = err
		if provider.IsMissingCredentials(err) {
			// Unconfigured providers are an expected deployment state,
			// not a failure worth surfacing.
			zap.L().Debug("research provider unconfigured, skipping",
				zap.String("label", label),
				zap.String("provider", string(id)),
			)
		} else {
			zap.L().Warn("research provider attempt failed",
				zap.String("label", label),
				zap.String("provider", string(id)),
				zap.String("cause", string(provider.CauseOf(err))),
				zap.Duration("duration", elapsed),
				zap.Bool("quota_exhausted", IsQuotaExhausted(err)),
				zap.Error(err),
			)
		}

		if i == 0 && opts.OnPrimaryFailure != nil && !provider.IsMissingCredentials(err) {
			opts.OnPrimaryFailure(id, err)
		}

		// Parent context gone: further attempts would fail the same way.
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr != nil {
		return nil, "", eris.Wrapf(ErrAllProvidersFailed, "%s: last error: %v", label, lastErr)
	}
	return nil, "", eris.Wrap(ErrAllProvidersFailed, label)
}
