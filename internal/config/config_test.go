package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"movie2manual/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MOVIE2MANUAL_LLM_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "movie2manual", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "movie2manual", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Manual.OutputDir != "./manual_assets" {
		t.Fatalf("expected relative output dir to be kept, got %q", cfg.Manual.OutputDir)
	}
	if cfg.Manual.MarkdownOutput != "manual.md" {
		t.Fatalf("unexpected markdown output %q", cfg.Manual.MarkdownOutput)
	}
	if !cfg.Manual.ValidateTimecodes {
		t.Fatal("expected timecode validation on by default")
	}
	if cfg.Manual.AllowDuplicateFilenames {
		t.Fatal("expected duplicate filenames rejected by default")
	}
	if cfg.FFmpeg.Binary != "ffmpeg" || cfg.FFmpeg.Workers != 1 {
		t.Fatalf("unexpected ffmpeg defaults %+v", cfg.FFmpeg)
	}
	if cfg.FFmpegTimeout().Seconds() != 60 {
		t.Fatalf("unexpected ffmpeg timeout %v", cfg.FFmpegTimeout())
	}
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("unexpected llm base url %q", cfg.LLM.BaseURL)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if !cfg.Run.LockOutputDir {
		t.Fatal("expected output dir locking by default")
	}
	if cfg.LogFilePath() != "" {
		t.Fatalf("expected no log file unless to_file is set, got %q", cfg.LogFilePath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MOVIE2MANUAL_LLM_API_KEY", "")

	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `
[paths]
log_dir = "~/logs"

[manual]
output_dir = "~/manuals"
markdown_output = "steps.md"
title = "Handbook"
author = "Docs Team"
validate_timecodes = false
allow_duplicate_filenames = true

[ffmpeg]
binary = "/opt/ffmpeg/bin/ffmpeg"
timeout_seconds = 0
workers = 4
probe_duration = true

[logging]
format = "JSON"
level = "Debug"
to_file = true

[run]
lock_output_dir = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Manual.OutputDir != filepath.Join(tempHome, "manuals") {
		t.Fatalf("expected tilde output dir to expand, got %q", cfg.Manual.OutputDir)
	}
	if cfg.Manual.MarkdownOutput != "steps.md" || cfg.Manual.Title != "Handbook" || cfg.Manual.Author != "Docs Team" {
		t.Fatalf("unexpected manual section %+v", cfg.Manual)
	}
	if cfg.Manual.ValidateTimecodes || !cfg.Manual.AllowDuplicateFilenames {
		t.Fatalf("expected switches from file, got %+v", cfg.Manual)
	}
	if cfg.FFmpeg.Workers != 4 || cfg.FFmpegTimeout() != 0 || !cfg.FFmpeg.ProbeDuration {
		t.Fatalf("unexpected ffmpeg section %+v", cfg.FFmpeg)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
	if cfg.LogFilePath() != filepath.Join(tempHome, "logs", "movie2manual.log") {
		t.Fatalf("unexpected log file path %q", cfg.LogFilePath())
	}
	if cfg.Run.LockOutputDir {
		t.Fatal("expected locking disabled")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.toml")
	if err := os.WriteFile(path, []byte("[ffmpeg]\nworkerz = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "workerz") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnvVarFallbackForAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[llm]\nmodel = \"test/model\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MOVIE2MANUAL_LLM_API_KEY", "primary")
	t.Setenv("OPENROUTER_API_KEY", "secondary")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "primary" {
		t.Fatalf("expected primary env key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "test/model" {
		t.Fatalf("unexpected model %q", cfg.LLM.Model)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM returned error: %v", err)
	}

	os.Unsetenv("MOVIE2MANUAL_LLM_API_KEY")
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "secondary" {
		t.Fatalf("expected OpenRouter env key, got %q", cfg.LLM.APIKey)
	}
}

func TestFileAPIKeyWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[llm]\napi_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MOVIE2MANUAL_LLM_API_KEY", "from-env")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "from-file" {
		t.Fatalf("expected file key, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path, false); err == nil {
		t.Fatal("expected existing sample to be preserved")
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("CreateSample overwrite failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	defaults := config.Default()
	if cfg.Manual != defaults.Manual || cfg.FFmpeg != defaults.FFmpeg || cfg.Run != defaults.Run {
		t.Fatalf("sample diverges from defaults: %+v", cfg)
	}
	if cfg.LLM != defaults.LLM {
		t.Fatalf("sample llm section diverges from defaults: %+v", cfg.LLM)
	}
}

func TestEncodeMasksAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-or-1234567890abcdef"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.Contains(string(data), "1234567890") {
		t.Fatalf("expected api key to be masked: %s", data)
	}
	if !strings.Contains(string(data), "workers = 1") {
		t.Fatalf("expected ffmpeg section in output: %s", data)
	}
	if cfg.LLM.APIKey != "sk-or-1234567890abcdef" {
		t.Fatal("Encode must not mutate the config")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"workers zero", func(c *config.Config) { c.FFmpeg.Workers = 0 }},
		{"workers too many", func(c *config.Config) { c.FFmpeg.Workers = 1000 }},
		{"negative timeout", func(c *config.Config) { c.FFmpeg.TimeoutSeconds = -1 }},
		{"escaping markdown", func(c *config.Config) { c.Manual.MarkdownOutput = "../manual.md" }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"llm timeout", func(c *config.Config) { c.LLM.TimeoutSeconds = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected missing api key to be reported")
	}
}
