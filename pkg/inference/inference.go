// Package inference is the text-completion provider boundary. The
// pipeline depends only on the Completer interface; OpenAI and Gemini
// implementations are provided.
package inference

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"

	"fabler/pkg/retry"
)

// ErrNoContent is returned when a provider answers without usable
// content. Callers treat it as retryable at their own level, not as a
// crash.
var ErrNoContent = errors.New("inference: no content returned")

// Usage is the provider-reported token accounting for one call.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Result is the outcome of one completion call.
type Result struct {
	Content string
	Usage   Usage
}

// Completer runs one structured text completion. params carries the
// response format, sampling seed, reasoning effort and token limits;
// implementations fill defaults for anything unset.
type Completer interface {
	Complete(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (*Result, error)
}

// Transient reports whether a provider error is worth retrying:
// network-class failures plus 429/5xx API statuses. Content-policy
// rejections and other 4xx responses are permanent.
func Transient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return retry.IsTransient(err)
}

// ContentPolicy reports whether the provider refused generation on
// policy grounds. These are surfaced verbatim and never retried.
func ContentPolicy(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusForbidden ||
		apiErr.Code == "content_policy_violation" ||
		apiErr.Code == "content_filter"
}
