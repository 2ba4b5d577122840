package screenshots

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Extractor writes a single frame of video at timecode to outputPath.
type Extractor interface {
	ExtractFrame(ctx context.Context, video, timecode, outputPath string) error
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, video, timecode, outputPath string) error

// ExtractFrame calls f.
func (f ExtractorFunc) ExtractFrame(ctx context.Context, video, timecode, outputPath string) error {
	return f(ctx, video, timecode, outputPath)
}

// FFmpeg extracts frames by running the ffmpeg binary.
type FFmpeg struct {
	// Binary defaults to "ffmpeg" resolved from PATH.
	Binary string
	// Timeout bounds each invocation; zero means no limit.
	Timeout time.Duration
}

// Args returns the ffmpeg arguments for one frame. The seek precedes -i for
// fast input seeking.
func (f FFmpeg) Args(video, timecode, outputPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", timecode,
		"-i", video,
		"-frames:v", "1",
		"-q:v", "2",
		outputPath,
	}
}

func (f FFmpeg) binary() string {
	if binary := strings.TrimSpace(f.Binary); binary != "" {
		return binary
	}
	return "ffmpeg"
}

// ExtractFrame runs ffmpeg once. A missing binary, a timeout and a non-zero
// exit status are all reported as errors.
func (f FFmpeg) ExtractFrame(ctx context.Context, video, timecode, outputPath string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	binary := f.binary()
	cmd := exec.CommandContext(ctx, binary, f.Args(video, timecode, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("ffmpeg binary %q not found: %w", binary, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && f.Timeout > 0 {
			return fmt.Errorf("ffmpeg timed out after %s: %w", f.Timeout, ctxErr)
		}
		return fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("ffmpeg exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("ffmpeg exited with status %d: %s", exitErr.ExitCode(), detail)
	}
	return fmt.Errorf("run ffmpeg: %w", err)
}
