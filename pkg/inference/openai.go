package inference

import (
	"cmp"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// OpenAICompleter implements Completer using OpenAI's official Go SDK.
type OpenAICompleter struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAICompleter creates a new completer instance using the OpenAI
// client.
func NewOpenAICompleter(apiKey string, model string) *OpenAICompleter {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAICompleter{
		client: &client,
		apiKey: apiKey,
		model:  model,
	}
}

// ChangeBaseURL points the completer at an OpenAI-compatible endpoint,
// e.g. a local server.
func (o *OpenAICompleter) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
	)
	o.client = &client
}

func (o *OpenAICompleter) SetModel(model string) {
	o.model = model
}

// Complete sends one chat completion and returns content plus token
// usage. Caller-set params win; everything else gets defaults.
func (o *OpenAICompleter) Complete(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (*Result, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	} else {
		cp := *params
		params = &cp
	}
	params.Model = cmp.Or(params.Model, o.model)
	params.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: system},
				},
			}},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role: "user",
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.Opt[string]{Value: user},
				},
			},
		},
	}

	params.MaxCompletionTokens = openai.Int(cmp.Or(params.MaxCompletionTokens.Value, 4096*4))
	params.Temperature = openai.Float(cmp.Or(params.Temperature.Value, 0.7))
	params.TopP = openai.Float(cmp.Or(params.TopP.Value, 1.0))

	resp, err := o.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return nil, fmt.Errorf("openai inference error: %w", err)
	}

	result := &Result{
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return result, ErrNoContent
	}
	result.Content = resp.Choices[0].Message.Content
	return result, nil
}
