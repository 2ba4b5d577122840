package services

import "context"

type ctxKey int

const (
	stageCtxKey ctxKey = iota
	runIDCtxKey
	screenshotCtxKey
)

// WithStage tags ctx with the pipeline step that is currently running
// ("normalize", "extract", "persist").
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageCtxKey, stage)
}

// StageFromContext reports the step recorded by WithStage.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageCtxKey).(string)
	return stage, ok && stage != ""
}

// WithRunID tags ctx with the identifier shared by every log line and
// artifact of one pipeline run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDCtxKey, id)
}

// RunIDFromContext reports the identifier recorded by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDCtxKey).(string)
	return id, ok && id != ""
}

// WithScreenshot tags ctx with the index of the screenshot being extracted.
func WithScreenshot(ctx context.Context, index int) context.Context {
	if index < 0 {
		return ctx
	}
	return context.WithValue(ctx, screenshotCtxKey, index)
}

// ScreenshotFromContext reports the index recorded by WithScreenshot.
func ScreenshotFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(screenshotCtxKey).(int)
	return index, ok
}
