package inference

import (
	"cmp"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// GeminiCompleter implements Completer on top of the Gemini API. The
// openai params struct stays the cross-provider carrier for limits and
// sampling knobs, same as the rest of the pipeline uses.
type GeminiCompleter struct {
	client *genai.Client
	apiKey string
	model  string
}

func NewGeminiCompleter(apiKey string, model string) (*GeminiCompleter, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiCompleter{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (g *GeminiCompleter) ChangeConfig(config *genai.ClientConfig) {
	client, err := genai.NewClient(context.Background(), config)
	if err != nil {
		return
	}
	g.client = client
}

// Complete sends one generation request in JSON mode and returns the
// text plus token usage.
func (g *GeminiCompleter) Complete(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (*Result, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, 4096)),
	}
	if params.Seed.Valid() {
		s := int32(params.Seed.Value)
		config.Seed = &s
	}
	if params.Temperature.Valid() {
		temp := float32(params.Temperature.Value)
		config.Temperature = &temp
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		cmp.Or(params.Model, g.model),
		genai.Text(user),
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	out := &Result{Content: result.Text()}
	if result.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int64(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	if out.Content == "" {
		return out, ErrNoContent
	}
	return out, nil
}
