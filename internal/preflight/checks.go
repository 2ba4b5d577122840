package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"movie2manual/internal/config"
	"movie2manual/internal/deps"
	"movie2manual/internal/media/ffprobe"
	"movie2manual/internal/services/llm"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDir is CheckDirectoryAccess for a directory a run may still
// create: when path is absent, its nearest existing ancestor must be writable.
func CheckOutputDir(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "output directory not configured"}
	}
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(filepath.Clean(path))
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	parent := CheckDirectoryAccess(name, ancestor)
	if !parent.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot be created under %s)", path, parent.Detail)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSystemDeps evaluates the external binaries a run needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	ffprobeBinary := resolveFFprobe(cfg)
	if ffprobeBinary == "" {
		ffprobeBinary = cfg.FFmpeg.FFprobeBinary
		if ffprobeBinary == "" {
			ffprobeBinary = "ffprobe"
		}
	}
	statuses := deps.CheckBinaries(deps.Requirements(cfg.FFmpeg.Binary, ffprobeBinary, cfg.FFmpeg.ProbeDuration))
	for i := range statuses {
		if statuses[i].Name != "FFmpeg" || !statuses[i].Available {
			continue
		}
		if probe := ProbeFFmpeg(cfg.FFmpeg.Binary); probe.Detected {
			statuses[i].Detail = probe.Detail()
		}
	}
	return statuses
}

// CheckVideo confirms the video exists and, when ffprobe is available,
// that it carries a video stream.
func CheckVideo(ctx context.Context, name, ffprobeBinary, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if ffprobeBinary == "" {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not probed)", path)}
	}

	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := ffprobe.Inspect(probeCtx, ffprobeBinary, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if _, ok := result.VideoStream(); !ok {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no video stream)", path)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%s)", path, result.Summary()),
	}
}

func resolveFFprobe(cfg *config.Config) string {
	status := deps.ResolveFFprobe(cfg.FFmpeg.FFprobeBinary, cfg.FFmpeg.Binary)
	if !status.Available {
		return ""
	}
	return status.Path
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
