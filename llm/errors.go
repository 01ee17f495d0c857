package llm

import "fmt"

// GenerationError indicates the provider answered, but the response did not
// follow the expected format (no answer delimiter, or empty sections). The
// caller decides whether the partial content is still usable.
type GenerationError struct {
	Raw string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("malformed generation response: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Code returns the stable machine-readable error code.
func (e *GenerationError) Code() string { return "generation_malformed" }

// UnavailableError indicates the provider could not be reached or kept
// failing after retries.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("llm %s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Code returns the stable machine-readable error code.
func (e *UnavailableError) Code() string { return "llm_unavailable" }
