package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/pkg/anthropic"
)

const claudeSystem = "You are a B2B company research analyst. Answer with a single valid JSON object matching the requested schema. Use null or [] for anything you cannot verify; never fabricate."

// ClaudeAdapter drives the Anthropic messages API.
type ClaudeAdapter struct {
	key     string
	model   string
	factory func() anthropic.Client
}

// NewClaude creates the Claude adapter.
func NewClaude(key, model string) *ClaudeAdapter {
	a := &ClaudeAdapter{key: key, model: model}
	a.factory = func() anthropic.Client {
		return anthropic.NewClient(a.key)
	}
	return a
}

// WithClientFactory overrides client construction, for tests.
func (a *ClaudeAdapter) WithClientFactory(f func() anthropic.Client) *ClaudeAdapter {
	a.factory = f
	return a
}

func (a *ClaudeAdapter) ID() ID { return Claude }

func (a *ClaudeAdapter) Generate(ctx context.Context, prompt string) (map[string]any, error) {
	if a.key == "" {
		return nil, &CallError{Provider: Claude, Cause: CauseMissingCredentials}
	}

	temp := 0.2
	resp, err := a.factory().CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   8192,
		System:      claudeSystem,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, &CallError{Provider: Claude, Cause: CauseUpstreamHTTPError, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return nil, &CallError{Provider: Claude, Cause: CauseNoTextReturned}
	}

	obj, err := ExtractJSON(text)
	if err != nil {
		zap.L().Warn("claude: unparsable response",
			zap.String("snippet", snippet(text)),
		)
		return nil, &CallError{Provider: Claude, Cause: CauseUnparsableJSON, Err: err}
	}
	return obj, nil
}
