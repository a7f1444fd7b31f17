// Package extract parses raw listing pages into normalized job records.
// Extraction is best-effort field recognition, not strict parsing: listing
// pages vary too widely in structure for anything stricter to survive contact
// with real job boards.
package extract

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when a page yields no extractable text at all.
var ErrNoContent = errors.New("no extractable content")

// StructuredError represents a failure of the LLM-assisted extraction path.
// Callers fall back to heuristic fields rather than failing the run.
type StructuredError struct {
	Message string
	Cause   error
}

func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("structured extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("structured extraction failed: %s", e.Message)
}

func (e *StructuredError) Unwrap() error {
	return e.Cause
}
