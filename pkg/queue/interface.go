// Package queue defines the image-synthesis provider boundary.
package queue

import "context"

// Request is one image-synthesis call. Seed is the deterministic
// 31-bit image seed; everything else is plain prompt plumbing.
type Request struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
	Model    string `json:"model,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Seed     uint32 `json:"seed"`
	Steps    int    `json:"steps"`
}

// Result carries the stored image handle. Data is the encoded image
// when the implementation keeps bytes around; URL is always set on
// success.
type Result struct {
	URL  string
	Data []byte
}

// Synthesizer renders one image. A nil error guarantees a usable URL;
// callers decide whether a failure dooms anything beyond this one
// image.
type Synthesizer interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}

// DefaultRequest returns the standard storybook illustration settings.
func DefaultRequest() *Request {
	return &Request{
		Width:  832,
		Height: 1216,
		Steps:  28,
	}
}
