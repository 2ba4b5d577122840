package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecovery      = errors.New("recovery failure")
	ErrValidation    = errors.New("validation failure")
	ErrFormat        = errors.New("format failure")
	ErrMissingSource = errors.New("missing source")
	ErrExtraction    = errors.New("extraction failure")
	ErrPersistence   = errors.New("persistence failure")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrConflict      = errors.New("output directory in use")
)

// Wrap tags err with marker and prefixes it with "stage: operation: message",
// skipping blank parts. errors.Is matches both marker and err. A nil marker
// is treated as ErrExternalTool.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExternalTool
	}
	detail := joinDetail(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Fatal reports whether err aborts a run. Persistence failures are auxiliary
// and only surface as warnings.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrPersistence)
}

// ExitCode maps a run failure to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrRecovery),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrFormat),
		errors.Is(err, ErrMissingSource),
		errors.Is(err, ErrConfiguration):
		return 2
	default:
		return 1
	}
}

func joinDetail(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "unspecified failure"
	}
	return strings.Join(kept, ": ")
}
