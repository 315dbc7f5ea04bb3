package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/pkg/gemini"
)

// GeminiAdapter drives Gemini with google-search grounding enabled.
type GeminiAdapter struct {
	key     string
	model   string
	factory func() gemini.Client
}

// NewGemini creates the Gemini adapter. The client is constructed per
// call so availability can be probed cheaply by catching the
// missing-credentials failure.
func NewGemini(key, model string) *GeminiAdapter {
	a := &GeminiAdapter{key: key, model: model}
	a.factory = func() gemini.Client {
		return gemini.NewClient(a.key, gemini.WithModel(a.model))
	}
	return a
}

// WithClientFactory overrides client construction, for tests.
func (a *GeminiAdapter) WithClientFactory(f func() gemini.Client) *GeminiAdapter {
	a.factory = f
	return a
}

func (a *GeminiAdapter) ID() ID { return Gemini }

func (a *GeminiAdapter) Generate(ctx context.Context, prompt string) (map[string]any, error) {
	if a.key == "" {
		return nil, &CallError{Provider: Gemini, Cause: CauseMissingCredentials}
	}

	temp := float32(0.2)
	resp, err := a.factory().GenerateGrounded(ctx, gemini.GenerateRequest{
		Prompt:      prompt,
		Temperature: &temp,
	})
	if err != nil {
		return nil, &CallError{Provider: Gemini, Cause: CauseUpstreamHTTPError, Err: err}
	}
	if resp.Text == "" {
		return nil, &CallError{Provider: Gemini, Cause: CauseNoTextReturned}
	}

	if len(resp.SearchQueries) > 0 {
		zap.L().Debug("gemini: grounding queries",
			zap.Strings("queries", resp.SearchQueries),
		)
	}

	obj, err := ExtractJSON(resp.Text)
	if err != nil {
		zap.L().Warn("gemini: unparsable response",
			zap.String("snippet", snippet(resp.Text)),
		)
		return nil, &CallError{Provider: Gemini, Cause: CauseUnparsableJSON, Err: err}
	}
	return obj, nil
}

// snippet truncates response text for diagnostic logs.
func snippet(text string) string {
	const max = 200
	if len(text) > max {
		return text[:max]
	}
	return text
}
