package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"movie2manual/internal/config"
	"movie2manual/internal/logging"
	"movie2manual/internal/manifest"
	"movie2manual/internal/recovery"
	"movie2manual/internal/services"
	"movie2manual/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	video string
	out   string
	stub  testsupport.FFmpegStub
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	binDir := filepath.Join(base, "stubbin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stub := testsupport.WriteFFmpegStub(t, binDir)
	cfg.FFmpeg.Binary = stub.Path
	return fixture{
		cfg:   cfg,
		video: testsupport.WriteVideo(t, filepath.Join(base, "demo.mp4"), 32),
		out:   cfg.Manual.OutputDir,
		stub:  stub,
	}
}

func (f fixture) runner(runnerOpts ...RunnerOption) *Runner {
	return NewRunner(OptionsFromConfig(f.cfg), logging.NewNop(), runnerOpts...)
}

func rawResponse(video string) string {
	return "Here is the manual you asked for.\n```json\n" + `{
  "video": "` + video + `",
  "title": "Demo",
  "body_markdown": "# Demo\n![start](step01.png)\n",
  "screenshots": [
    {"time": "00:00:01.000", "filename": "step01.png", "caption": "Start"},
    {"time": 2.5, "filename": "step02.png"},
    {"time": "0:00:04.2", "filename": "step03.png", "caption": "Finish"}
  ]
}` + "\n```\nLet me know if you need changes."
}

type recordingExtractor struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingExtractor) ExtractFrame(_ context.Context, _, timecode, outputPath string) error {
	r.mu.Lock()
	r.calls = append(r.calls, timecode)
	r.mu.Unlock()
	return os.WriteFile(outputPath, []byte("frame"), 0o644)
}

func TestRunProducesArtifactsInOrder(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner().Run(context.Background(), rawResponse(f.video))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{
		filepath.Join(f.out, "step01.png"),
		filepath.Join(f.out, "step02.png"),
		filepath.Join(f.out, "step03.png"),
	}
	if diff := cmp.Diff(want, result.ImagePaths); diff != "" {
		t.Fatalf("image paths mismatch (-want +got):\n%s", diff)
	}
	for _, path := range want {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}

	calls := f.stub.Calls(t)
	if len(calls) != 3 {
		t.Fatalf("expected 3 ffmpeg calls, got %d: %v", len(calls), calls)
	}
	for i, tc := range []string{"00:00:01.000", "00:00:02.500", "00:00:04.200"} {
		if !strings.Contains(calls[i], "-ss "+tc+" -i "+f.video) {
			t.Fatalf("call %d missing seek to %s: %s", i, tc, calls[i])
		}
	}

	body, err := os.ReadFile(filepath.Join(f.out, "manual.md"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if string(body) != "# Demo\n![start](step01.png)\n" {
		t.Fatalf("unexpected markdown %q", body)
	}
	if result.MarkdownPath != filepath.Join(f.out, "manual.md") {
		t.Fatalf("unexpected markdown path %q", result.MarkdownPath)
	}
	if result.ManifestPath != filepath.Join(f.out, manifest.FileName) {
		t.Fatalf("unexpected manifest path %q", result.ManifestPath)
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
	if result.Recovery == nil || result.Recovery.Source == "" {
		t.Fatalf("expected recovery info, got %+v", result.Recovery)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
	if _, err := os.Stat(filepath.Join(f.out, LockFileName)); !os.IsNotExist(err) {
		t.Fatalf("expected lock file to be removed, stat err=%v", err)
	}
}

func TestRunStopsAtFirstFailedScreenshot(t *testing.T) {
	f := newFixture(t)
	t.Setenv(testsupport.FFmpegStubFailEnv, "00:00:02.500")

	result, err := f.runner().Run(context.Background(), rawResponse(f.video))
	if err == nil {
		t.Fatal("expected extraction failure")
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if !strings.Contains(err.Error(), "00:00:02.500") || !strings.Contains(err.Error(), "step02.png") {
		t.Fatalf("error should name timecode and filename: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(f.out, "step01.png")}, result.ImagePaths); diff != "" {
		t.Fatalf("partial paths mismatch (-want +got):\n%s", diff)
	}
	if calls := f.stub.Calls(t); len(calls) != 2 {
		t.Fatalf("expected extraction to stop after 2 calls, got %d", len(calls))
	}
	if _, err := os.Stat(filepath.Join(f.out, "step03.png")); !os.IsNotExist(err) {
		t.Fatal("step03.png should not be extracted")
	}
	if _, err := os.Stat(filepath.Join(f.out, "manual.md")); err != nil {
		t.Fatalf("markdown should be written before extraction: %v", err)
	}
	if services.ExitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d", services.ExitCode(err))
	}
}

func TestRunRecoveryFailure(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner().Run(context.Background(), "I could not produce a manual for this video.")
	if !errors.Is(err, services.ErrRecovery) {
		t.Fatalf("expected ErrRecovery, got %v", err)
	}
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", services.ExitCode(err))
	}
	if result.RunID == "" {
		t.Fatal("expected run id even on failure")
	}
	if calls := f.stub.Calls(t); len(calls) != 0 {
		t.Fatalf("expected no ffmpeg calls, got %v", calls)
	}
}

func TestRunValidationFailure(t *testing.T) {
	f := newFixture(t)
	raw := `{"video": "` + f.video + `", "screenshots": [{"time": "00:00:01.000"}]}`

	_, err := f.runner().Run(context.Background(), raw)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, statErr := os.Stat(f.out); !os.IsNotExist(statErr) {
		t.Fatal("output directory should not be created for invalid specs")
	}
}

func TestRunMissingSource(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(testsupport.BaseDir(f.cfg), "nope.mp4")

	_, err := f.runner().Run(context.Background(), rawResponse(missing))
	if !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
	if calls := f.stub.Calls(t); len(calls) != 0 {
		t.Fatalf("expected no ffmpeg calls, got %v", calls)
	}
	if _, statErr := os.Stat(filepath.Join(f.out, "manual.md")); !os.IsNotExist(statErr) {
		t.Fatal("markdown should not be written when the source is missing")
	}
}

func TestRunPersistenceFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	// A directory squatting on the markdown path makes the rename fail.
	if err := os.MkdirAll(filepath.Join(f.out, "manual.md", "occupied"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	extractor := &recordingExtractor{}

	result, err := f.runner(WithExtractor(extractor)).Run(context.Background(), rawResponse(f.video))
	if err != nil {
		t.Fatalf("persistence failure should not abort the run: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	if result.MarkdownPath != "" {
		t.Fatalf("expected empty markdown path, got %q", result.MarkdownPath)
	}
	if result.ManifestPath == "" {
		t.Fatal("manifest should still be written")
	}
	if len(extractor.calls) != 3 || len(result.ImagePaths) != 3 {
		t.Fatalf("expected all screenshots extracted, got calls=%v paths=%v", extractor.calls, result.ImagePaths)
	}
}

func TestRunDocumentFromFile(t *testing.T) {
	f := newFixture(t)
	specPath := filepath.Join(testsupport.BaseDir(f.cfg), "spec.json")
	doc := `{"video": "` + f.video + `", "output_dir": "` + filepath.Join(testsupport.BaseDir(f.cfg), "custom") + `",
"screenshots": [{"time": 1, "filename": "only.png"}]}`
	if err := os.WriteFile(specPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	extractor := &recordingExtractor{}

	result, err := f.runner(WithExtractor(extractor)).RunDocument(context.Background(), specPath)
	if err != nil {
		t.Fatalf("RunDocument returned error: %v", err)
	}
	want := filepath.Join(testsupport.BaseDir(f.cfg), "custom", "only.png")
	if diff := cmp.Diff([]string{want}, result.ImagePaths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"00:00:01.000"}, extractor.calls); diff != "" {
		t.Fatalf("timecodes mismatch (-want +got):\n%s", diff)
	}
	if result.Recovery != nil {
		t.Fatal("documents loaded from disk carry no recovery info")
	}

	_, err = f.runner().RunDocument(context.Background(), filepath.Join(testsupport.BaseDir(f.cfg), "absent.json"))
	if !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource for absent file, got %v", err)
	}
}

func TestRunSpecDocument(t *testing.T) {
	f := newFixture(t)
	doc := recovery.Document{
		"video":       f.video,
		"screenshots": []any{map[string]any{"time": json.Number("1.5"), "filename": "one.png"}},
	}
	extractor := &recordingExtractor{}

	result, err := f.runner(WithExtractor(extractor)).RunSpecDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("RunSpecDocument returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"00:00:01.500"}, extractor.calls); diff != "" {
		t.Fatalf("timecodes mismatch (-want +got):\n%s", diff)
	}
	if result.RunID == "" || result.Recovery != nil {
		t.Fatalf("unexpected result %+v", result)
	}

	_, err = f.runner().RunSpecDocument(context.Background(), recovery.Document{"video": f.video, "screenshots": "none"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestReextractUsesManifestDirectory(t *testing.T) {
	f := newFixture(t)
	first, err := f.runner(WithExtractor(&recordingExtractor{})).Run(context.Background(), rawResponse(f.video))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	moved := filepath.Join(testsupport.BaseDir(f.cfg), "moved")
	if err := os.Rename(f.out, moved); err != nil {
		t.Fatalf("rename: %v", err)
	}

	extractor := &recordingExtractor{}
	result, err := f.runner(WithExtractor(extractor)).Reextract(context.Background(), filepath.Join(moved, manifest.FileName))
	if err != nil {
		t.Fatalf("Reextract returned error: %v", err)
	}
	if result.Spec.OutputDir != moved {
		t.Fatalf("expected output dir %s, got %s", moved, result.Spec.OutputDir)
	}
	if result.RunID == first.RunID {
		t.Fatal("reextract should start a new run")
	}
	if diff := cmp.Diff([]string{"00:00:01.000", "00:00:02.500", "00:00:04.200"}, extractor.calls); diff != "" {
		t.Fatalf("timecodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Spec.Screenshots[0].Filename, result.Spec.Screenshots[0].Filename); diff != "" {
		t.Fatalf("spec not preserved: %s", diff)
	}
}

func TestRunReusesContextRunID(t *testing.T) {
	f := newFixture(t)
	ctx := services.WithRunID(context.Background(), "fixed-id")

	result, err := f.runner(WithExtractor(&recordingExtractor{})).Run(ctx, rawResponse(f.video))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.RunID != "fixed-id" {
		t.Fatalf("expected fixed-id, got %q", result.RunID)
	}
}

func TestRunRejectsLockedOutputDir(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.out, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held := flock.New(filepath.Join(f.out, LockFileName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	extractor := &recordingExtractor{}
	_, err = f.runner(WithExtractor(extractor)).Run(context.Background(), rawResponse(f.video))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(extractor.calls) != 0 {
		t.Fatalf("expected no extraction, got %v", extractor.calls)
	}

	f.cfg.Run.LockOutputDir = false
	if _, err := f.runner(WithExtractor(extractor)).Run(context.Background(), rawResponse(f.video)); err != nil {
		t.Fatalf("unlocked run should ignore the lock: %v", err)
	}
}

func TestRunWarnsPastVideoEnd(t *testing.T) {
	f := newFixture(t)
	f.cfg.FFmpeg.ProbeDuration = true
	f.cfg.FFmpeg.FFprobeBinary = testsupport.WriteFFprobeStub(t, filepath.Dir(f.cfg.FFmpeg.Binary))
	t.Setenv(testsupport.FFprobeStubDurationEnv, "3")

	result, err := f.runner(WithExtractor(&recordingExtractor{})).Run(context.Background(), rawResponse(f.video))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "screenshots[2]") || !strings.Contains(result.Warnings[0], "past the end") {
		t.Fatalf("unexpected warning %q", result.Warnings[0])
	}
}

func TestRunParallelWorkers(t *testing.T) {
	f := newFixture(t, testsupport.WithWorkers(3))
	extractor := &recordingExtractor{}

	result, err := f.runner(WithExtractor(extractor)).Run(context.Background(), rawResponse(f.video))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.ImagePaths) != 3 || result.ImagePaths[2] != filepath.Join(f.out, "step03.png") {
		t.Fatalf("unexpected paths %v", result.ImagePaths)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Manual.ValidateTimecodes = false
	cfg.Manual.AllowDuplicateFilenames = true
	cfg.Manual.Author = "Docs"
	cfg.FFmpeg.Workers = 4
	cfg.FFmpeg.TimeoutSeconds = 5

	opts := OptionsFromConfig(&cfg)
	if !opts.Normalize.SkipTimecodeValidation || !opts.Normalize.AllowDuplicateFilenames {
		t.Fatalf("normalize flags not mapped: %+v", opts.Normalize)
	}
	if opts.Normalize.DefaultAuthor != "Docs" || opts.Normalize.DefaultOutputDir != "./manual_assets" {
		t.Fatalf("defaults not mapped: %+v", opts.Normalize)
	}
	if opts.Workers != 4 || opts.FFmpegTimeout.Seconds() != 5 {
		t.Fatalf("ffmpeg options not mapped: %+v", opts)
	}
	if !opts.LockOutputDir {
		t.Fatal("expected lock enabled by default")
	}
	if OptionsFromConfig(nil).FFmpegBinary != "ffmpeg" {
		t.Fatal("nil config should fall back to defaults")
	}
}
