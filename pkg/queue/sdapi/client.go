// Package sdapi implements the image-synthesis boundary against a
// Stable Diffusion WebUI compatible txt2img endpoint.
package sdapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fabler/pkg/queue"
)

// Client is a thin HTTP client for the txt2img endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type txt2imgRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Seed           int64  `json:"seed"`
	Steps          int    `json:"steps"`
	SamplerName    string `json:"sampler_name,omitempty"`
	OverrideModel  string `json:"override_settings_model,omitempty"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Detail string   `json:"detail,omitempty"`
}

// StatusError is a non-2xx answer from the image provider. The body is
// kept for logs, never for user-facing messages.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("image provider returned status %d", e.Code)
}

// Transient reports whether a generation error is a retryable
// provider-side condition.
func Transient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}

// Txt2Img renders one image and returns its raw bytes (PNG from the
// provider).
func (c *Client) Txt2Img(ctx context.Context, req *queue.Request) ([]byte, error) {
	body, err := json.Marshal(txt2imgRequest{
		Prompt:         req.Positive,
		NegativePrompt: req.Negative,
		Width:          req.Width,
		Height:         req.Height,
		Seed:           int64(req.Seed),
		Steps:          req.Steps,
		OverrideModel:  req.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var parsed txt2imgResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Images) == 0 {
		return nil, fmt.Errorf("no images in response")
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return data, nil
}
