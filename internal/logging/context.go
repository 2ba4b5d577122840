package logging

import (
	"context"
	"log/slog"

	"movie2manual/internal/services"
)

// Keys shared by every handler. Console output lifts component, stage and
// screenshot into the line header.
const (
	FieldComponent  = "component"
	FieldStage      = "stage"
	FieldRunID      = "run_id"
	FieldScreenshot = "screenshot"
	FieldEventType  = "event_type"
	FieldErrorHint  = "error_hint"
	FieldImpact     = "impact"
)

func contextAttrs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var attrs []any
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldStage, stage))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldRunID, id))
	}
	if index, ok := services.ScreenshotFromContext(ctx); ok {
		attrs = append(attrs, slog.Int(FieldScreenshot, index))
	}
	return attrs
}

// WithContext returns logger annotated with the stage, run id and screenshot
// index carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		return logger.With(attrs...)
	}
	return logger
}
