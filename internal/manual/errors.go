package manual

import (
	"fmt"

	"movie2manual/internal/services"
)

// ValidationError identifies the first field that kept a document from
// becoming a Specification. Index is the screenshot position, or -1 for
// top-level fields.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		if e.Field == "" {
			return fmt.Sprintf("validation: screenshots[%d]: %s", e.Index, e.Reason)
		}
		return fmt.Sprintf("validation: screenshots[%d].%s: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Unwrap exposes the validation marker.
func (e *ValidationError) Unwrap() error {
	return services.ErrValidation
}

func fieldError(field, reason string) error {
	return &ValidationError{Field: field, Index: -1, Reason: reason}
}

func entryError(index int, field, reason string) error {
	return &ValidationError{Field: field, Index: index, Reason: reason}
}
