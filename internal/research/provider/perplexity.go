package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/pkg/perplexity"
)

const perplexitySystem = "You are a B2B company research analyst. Search the web for current facts and answer with a single valid JSON object matching the requested schema. Use null or [] for anything you cannot verify; never fabricate."

// PerplexityAdapter drives Perplexity's sonar models, which search the
// web natively.
type PerplexityAdapter struct {
	key     string
	model   string
	factory func() perplexity.Client
}

// NewPerplexity creates the Perplexity adapter.
func NewPerplexity(key, model string) *PerplexityAdapter {
	a := &PerplexityAdapter{key: key, model: model}
	a.factory = func() perplexity.Client {
		return perplexity.NewClient(a.key, perplexity.WithModel(a.model))
	}
	return a
}

// WithClientFactory overrides client construction, for tests.
func (a *PerplexityAdapter) WithClientFactory(f func() perplexity.Client) *PerplexityAdapter {
	a.factory = f
	return a
}

func (a *PerplexityAdapter) ID() ID { return Perplexity }

func (a *PerplexityAdapter) Generate(ctx context.Context, prompt string) (map[string]any, error) {
	if a.key == "" {
		return nil, &CallError{Provider: Perplexity, Cause: CauseMissingCredentials}
	}

	temp := 0.2
	resp, err := a.factory().ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Temperature: &temp,
		Messages: []perplexity.Message{
			{Role: "system", Content: perplexitySystem},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, &CallError{Provider: Perplexity, Cause: CauseUpstreamHTTPError, Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &CallError{Provider: Perplexity, Cause: CauseNoTextReturned}
	}

	if len(resp.Citations) > 0 {
		zap.L().Debug("perplexity: citations",
			zap.Int("count", len(resp.Citations)),
		)
	}

	text := resp.Choices[0].Message.Content
	obj, err := ExtractJSON(text)
	if err != nil {
		zap.L().Warn("perplexity: unparsable response",
			zap.String("snippet", snippet(text)),
		)
		return nil, &CallError{Provider: Perplexity, Cause: CauseUnparsableJSON, Err: err}
	}
	return obj, nil
}
