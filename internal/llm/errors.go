package llm

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// GenKind classifies a generation failure.
type GenKind int

// Generation error kinds.
const (
	// ModelUnavailable means the model service cannot be reached or rejected the call.
	ModelUnavailable GenKind = iota
	// RateLimited means the service throttled the request; one retry with backoff is allowed.
	RateLimited
	// EmptyResponse means the model returned no usable text.
	EmptyResponse
)

func (k GenKind) String() string {
	switch k {
	case ModelUnavailable:
		return "model unavailable"
	case RateLimited:
		return "rate limited"
	case EmptyResponse:
		return "empty response"
	default:
		return "unknown"
	}
}

// GenerationError represents a failure invoking the language model.
type GenerationError struct {
	Kind    GenKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// classify maps a provider error onto the generation error taxonomy.
func classify(err error) *GenerationError {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &GenerationError{
			Kind:    RateLimited,
			Message: "rate limited by model service",
			Cause:   err,
		}
	}

	return &GenerationError{
		Kind:    ModelUnavailable,
		Message: "model service unavailable",
		Cause:   err,
	}
}
