package screenshots

import (
	"fmt"

	"movie2manual/internal/services"
)

// ExtractionError reports the entry whose frame could not be produced.
type ExtractionError struct {
	Index    int
	Timecode string
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction: screenshots[%d] at %s -> %s: %v", e.Index, e.Timecode, e.Filename, e.Err)
}

// Unwrap exposes both the extraction marker and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	return []error{services.ErrExtraction, e.Err}
}
