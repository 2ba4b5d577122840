package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"movie2manual/internal/config"
)

// ConfigOption adjusts the config returned by NewConfig.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory: logs under
// <base>/logs, manual assets under <base>/manual_assets and a dummy API key.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Manual.OutputDir = filepath.Join(base, "manual_assets")
	cfg.LLM.APIKey = "test"
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

// WithWorkers sets ffmpeg.workers.
func WithWorkers(workers int) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.FFmpeg.Workers = workers
	}
}

// WithProbeDuration toggles ffmpeg.probe_duration.
func WithProbeDuration(enabled bool) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.FFmpeg.ProbeDuration = enabled
	}
}

// WithStubbedBinaries installs the ffmpeg and ffprobe stubs under <base>/bin
// and puts that directory first on PATH for the rest of the test. Any extra
// names become no-op executables.
func WithStubbedBinaries(extra ...string) ConfigOption {
	return func(t testing.TB, base string, _ *config.Config) {
		t.Helper()
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		WriteFFmpegStub(t, binDir)
		WriteFFprobeStub(t, binDir)
		for _, name := range extra {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
