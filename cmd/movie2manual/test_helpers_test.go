package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movie2manual/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	video      string
	ffmpeg     testsupport.FFmpegStub
}

func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("MOVIE2MANUAL_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	stub := testsupport.WriteFFmpegStub(t, binDir)
	testsupport.WriteFFprobeStub(t, binDir)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "manual_assets"),
		video:      testsupport.WriteVideo(t, filepath.Join(base, "demo.mp4"), 64),
		ffmpeg:     stub,
	}
	content := fmt.Sprintf(
		"[paths]\nlog_dir = %q\n\n[manual]\noutput_dir = %q\n\n[ffmpeg]\nbinary = %q\n\n[logging]\nformat = \"json\"\nlevel = \"error\"\n%s",
		filepath.Join(base, "logs"),
		env.outputDir,
		stub.Path,
		extra,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func modelResponse(video string) string {
	return "Sure! Here is the specification:\n```json\n" + fmt.Sprintf(`{
  "video": %q,
  "title": "Demo",
  "body_markdown": "# Demo\n1. Open the app\n",
  "screenshots": [
    {"time": "00:00:01.000", "filename": "step01.png", "caption": "Open"},
    {"time": 3, "filename": "step02.png", "caption": "Save"}
  ]
}`, video) + "\n```\n"
}
