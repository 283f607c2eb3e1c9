package pipeline

import (
	"errors"
	"fmt"

	"fabler/pkg/inference"
)

// Phase names the pipeline stage an error came from.
type Phase string

const (
	PhaseSkeleton Phase = "skeleton"
	PhaseMatch    Phase = "match"
	PhaseFinalize Phase = "finalize"
	PhaseImages   Phase = "images"
)

// StructuralError means a phase output failed its shape invariants
// (wrong chapter count, unparseable JSON). It aborts the run; the
// caller may retry the whole request.
type StructuralError struct {
	Phase   Phase
	Attempt int
	Reason  string
	Err     error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (attempt %d): %s: %v", e.Phase, e.Attempt, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s (attempt %d): %s", e.Phase, e.Attempt, e.Reason)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// ContentPolicyError means the provider refused generation. Surfaced
// verbatim to the caller, never retried.
type ContentPolicyError struct {
	Phase Phase
	Err   error
}

func (e *ContentPolicyError) Error() string {
	return fmt.Sprintf("%s: provider refused generation: %v", e.Phase, e.Err)
}

func (e *ContentPolicyError) Unwrap() error { return e.Err }

// ProviderError wraps a provider failure that survived the retry
// budget. Raw provider payloads stay inside Err and never reach
// user-facing messages.
type ProviderError struct {
	Phase   Phase
	Attempt int
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (attempt %d): provider call failed: %v", e.Phase, e.Attempt, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// wrapProvider classifies a completion failure into the taxonomy.
func wrapProvider(phase Phase, attempt int, err error) error {
	if err == nil {
		return nil
	}
	if inference.ContentPolicy(err) {
		return &ContentPolicyError{Phase: phase, Err: err}
	}
	return &ProviderError{Phase: phase, Attempt: attempt, Err: err}
}

// IsStructural reports whether err carries a StructuralError anywhere
// in its chain.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
