package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler writes every record to the terminal handler and mirrors it into
// the run log file. A failure on one side does not stop the other.
type teeHandler struct {
	terminal slog.Handler
	file     slog.Handler
}

func newTeeHandler(terminal, file slog.Handler) slog.Handler {
	switch {
	case terminal == nil && file == nil:
		return slog.DiscardHandler
	case file == nil:
		return terminal
	case terminal == nil:
		return file
	}
	return &teeHandler{terminal: terminal, file: file}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.terminal.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	if h.terminal.Enabled(ctx, record.Level) {
		if err := h.terminal.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{terminal: h.terminal.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{terminal: h.terminal.WithGroup(name), file: h.file.WithGroup(name)}
}
