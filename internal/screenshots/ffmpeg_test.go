package screenshots_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"movie2manual/internal/logging"
	"movie2manual/internal/screenshots"
	"movie2manual/internal/services"
	"movie2manual/internal/testsupport"
)

func TestFFmpegArgs(t *testing.T) {
	got := screenshots.FFmpeg{}.Args("in.mp4", "00:00:03.500", "out/s1.png")
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-ss", "00:00:03.500", "-i", "in.mp4", "-frames:v", "1", "-q:v", "2", "out/s1.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestFFmpegExtractFrameWithStub(t *testing.T) {
	stub := testsupport.WriteFFmpegStub(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "frame.png")

	err := screenshots.FFmpeg{Binary: stub.Path}.ExtractFrame(context.Background(), "in.mp4", "00:00:03.500", out)
	if err != nil {
		t.Fatalf("ExtractFrame returned error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected frame to be written: %v", err)
	}
	args := stub.Calls(t)
	if len(args) != 1 || !strings.Contains(args[0], "-ss 00:00:03.500 -i in.mp4") {
		t.Fatalf("unexpected recorded invocation %q", args)
	}
}

func TestFFmpegExtractFrameNonZeroExit(t *testing.T) {
	stub := testsupport.WriteFFmpegStub(t, t.TempDir())
	t.Setenv(testsupport.FFmpegStubFailEnv, "00:00:05.000")
	out := filepath.Join(t.TempDir(), "frame.png")

	err := screenshots.FFmpeg{Binary: stub.Path}.ExtractFrame(context.Background(), "in.mp4", "00:00:05.000", out)
	if err == nil {
		t.Fatal("expected failure for non-zero exit")
	}
	if !strings.Contains(err.Error(), "status 1") || !strings.Contains(err.Error(), "seek failed") {
		t.Fatalf("expected exit status and stderr in error, got %v", err)
	}
}

func TestFFmpegMissingBinaryIsExtractionFailure(t *testing.T) {
	spec := newSpec(t, "s1.png")
	driver := screenshots.NewDriver(screenshots.FFmpeg{Binary: "clearly-not-present-ffmpeg"}, 1, logging.NewNop())

	paths, err := driver.Extract(context.Background(), spec)
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
}

func TestDriverWithStubbedFFmpegScenario(t *testing.T) {
	stub := testsupport.WriteFFmpegStub(t, t.TempDir())
	t.Setenv(testsupport.FFmpegStubFailEnv, "00:00:01.500")
	spec := newSpec(t, "s1.png", "s2.png", "s3.png")
	driver := screenshots.NewDriver(screenshots.FFmpeg{Binary: stub.Path}, 1, logging.NewNop())

	paths, err := driver.Extract(context.Background(), spec)
	if diff := cmp.Diff([]string{filepath.Join(spec.OutputDir, "s1.png")}, paths); diff != "" {
		t.Fatalf("unexpected paths (-want +got):\n%s", diff)
	}
	var extractErr *screenshots.ExtractionError
	if !errors.As(err, &extractErr) || extractErr.Filename != "s2.png" {
		t.Fatalf("expected failure naming s2.png, got %v", err)
	}
	if calls := stub.Calls(t); len(calls) != 2 {
		t.Fatalf("expected 2 ffmpeg invocations, got %d", len(calls))
	}
	if _, err := os.Stat(filepath.Join(spec.OutputDir, "s3.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("third frame should never be written, stat err=%v", err)
	}
}
