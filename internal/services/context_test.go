package services_test

import (
	"context"
	"testing"

	"movie2manual/internal/services"
)

func TestContextCarriesRunFields(t *testing.T) {
	ctx := services.WithStage(context.Background(), "extract")
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithScreenshot(ctx, 0)

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extract" {
		t.Fatalf("unexpected stage: %q %v", stage, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %q %v", id, ok)
	}
	if index, ok := services.ScreenshotFromContext(ctx); !ok || index != 0 {
		t.Fatalf("unexpected screenshot index: %d %v", index, ok)
	}
}

func TestBlankValuesLeaveContextUntouched(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithScreenshot(ctx, -1)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage for blank value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id for blank value")
	}
	if _, ok := services.ScreenshotFromContext(ctx); ok {
		t.Fatal("expected no screenshot index for negative value")
	}
}
