// Package gemini wraps the Google GenAI SDK for search-grounded generation.
package gemini

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Client performs grounded text generation against the Gemini API.
type Client interface {
	GenerateGrounded(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest holds the prompt and generation parameters.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature *float32
}

// GenerateResponse is the reduced response surface used by the research
// pipeline. SearchQueries is grounding metadata, used only for logging.
type GenerateResponse struct {
	Text          string
	SearchQueries []string
}

// Option configures the client.
type Option func(*genaiClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *genaiClient) {
		if model != "" {
			c.model = model
		}
	}
}

type genaiClient struct {
	apiKey string
	model  string
}

// NewClient creates a Gemini client. The underlying SDK client is built
// per request so credentials are never cached across calls.
func NewClient(apiKey string, opts ...Option) Client {
	c := &genaiClient{
		apiKey: apiKey,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *genaiClient) GenerateGrounded(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	if req.Temperature != nil {
		cfg.Temperature = req.Temperature
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: generate content")
	}

	out := &GenerateResponse{Text: resp.Text()}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		out.SearchQueries = resp.Candidates[0].GroundingMetadata.WebSearchQueries
	}
	return out, nil
}
