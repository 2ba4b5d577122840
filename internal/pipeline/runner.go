package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"movie2manual/internal/logging"
	"movie2manual/internal/manifest"
	"movie2manual/internal/manual"
	"movie2manual/internal/recovery"
	"movie2manual/internal/screenshots"
	"movie2manual/internal/services"
)

// LockFileName is the advisory lock created inside the output directory.
const LockFileName = ".movie2manual.lock"

// Result summarizes a completed run.
type Result struct {
	RunID        string               `json:"run_id"`
	Spec         manual.Specification `json:"spec"`
	ManifestPath string               `json:"manifest_path,omitempty"`
	MarkdownPath string               `json:"markdown_path,omitempty"`
	ImagePaths   []string             `json:"image_paths"`
	Warnings     []string             `json:"warnings,omitempty"`
	// Recovery describes how the specification was found in raw text.
	Recovery *RecoveryInfo `json:"recovery,omitempty"`
}

// RecoveryInfo reports which candidate the recoverer accepted.
type RecoveryInfo struct {
	Source   string `json:"source"`
	Repaired bool   `json:"repaired"`
	Attempts int    `json:"attempts"`
}

// Runner executes manual-generation runs.
type Runner struct {
	opts      Options
	extractor screenshots.Extractor
	logger    *slog.Logger
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithExtractor replaces the ffmpeg frame extractor.
func WithExtractor(extractor screenshots.Extractor) RunnerOption {
	return func(r *Runner) {
		if extractor != nil {
			r.extractor = extractor
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(opts Options, logger *slog.Logger, runnerOpts ...RunnerOption) *Runner {
	r := &Runner{
		opts: opts,
		extractor: screenshots.FFmpeg{
			Binary:  opts.FFmpegBinary,
			Timeout: opts.FFmpegTimeout,
		},
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range runnerOpts {
		opt(r)
	}
	return r
}

// Run recovers a specification from raw model output and executes it.
func (r *Runner) Run(ctx context.Context, rawText string) (Result, error) {
	ctx = withRun(ctx, "recover")
	recovered, err := recovery.Recover(rawText)
	if err != nil {
		r.logFailure(ctx, "recover", err)
		return Result{RunID: runID(ctx)}, err
	}
	logging.WithContext(ctx, r.logger).Debug(
		"specification recovered",
		logging.String(logging.FieldEventType, "recovery_complete"),
		logging.String("candidate_source", string(recovered.Candidate.Source)),
		logging.Bool("repaired", recovered.Repaired),
		logging.Int("attempts", recovered.Attempts),
	)
	result, err := r.execute(ctx, recovered.Document, r.opts.Normalize)
	result.Recovery = &RecoveryInfo{
		Source:   string(recovered.Candidate.Source),
		Repaired: recovered.Repaired,
		Attempts: recovered.Attempts,
	}
	return result, err
}

// RunDocument executes a specification document read from path. The file is
// parsed tolerantly, so fenced or prose-wrapped JSON and manifests both work.
func (r *Runner) RunDocument(ctx context.Context, path string) (Result, error) {
	ctx = withRun(ctx, "load")
	doc, err := manifest.Load(path)
	if err != nil {
		r.logFailure(ctx, "load", err)
		return Result{RunID: runID(ctx)}, err
	}
	return r.execute(ctx, doc, r.opts.Normalize)
}

// RunSpecDocument executes an already recovered document.
func (r *Runner) RunSpecDocument(ctx context.Context, doc recovery.Document) (Result, error) {
	return r.execute(withRun(ctx, "normalize"), doc, r.opts.Normalize)
}

// Reextract reloads a manifest, rewrites its Markdown and manifest, and
// extracts every screenshot again. Output lands next to the manifest unless
// an output directory override is configured.
func (r *Runner) Reextract(ctx context.Context, manifestPath string) (Result, error) {
	ctx = withRun(ctx, "reextract")
	doc, err := manifest.Load(manifestPath)
	if err != nil {
		r.logFailure(ctx, "reextract", err)
		return Result{RunID: runID(ctx)}, err
	}
	opts := r.opts.Normalize
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(manifestPath)
	}
	return r.execute(ctx, doc, opts)
}

func (r *Runner) execute(ctx context.Context, doc recovery.Document, normalizeOpts manual.Options) (Result, error) {
	result := Result{RunID: runID(ctx)}
	logger := logging.WithContext(ctx, r.logger)

	spec, err := manual.Normalize(doc, normalizeOpts)
	if err != nil {
		r.logFailure(ctx, "normalize", err)
		return result, err
	}
	result.Spec = spec

	if err := screenshots.CheckSource(spec.Video); err != nil {
		r.logFailure(ctx, "normalize", err)
		return result, err
	}

	unlock, err := r.lockOutputDir(spec.OutputDir)
	if err != nil {
		r.logFailure(ctx, "lock", err)
		return result, err
	}
	defer unlock()

	logger.Info(
		"run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("video", spec.Video),
		logging.String("output_dir", spec.OutputDir),
		logging.Int("screenshots", len(spec.Screenshots)),
	)
	start := time.Now()

	result.Warnings = append(result.Warnings, r.probeWarnings(ctx, spec)...)

	path, err := manifest.WriteMarkdown(spec)
	if err := r.absorb(ctx, &result, err); err != nil {
		return result, err
	}
	result.MarkdownPath = path
	path, err = manifest.Write(spec, result.RunID)
	if err := r.absorb(ctx, &result, err); err != nil {
		return result, err
	}
	result.ManifestPath = path

	driver := screenshots.NewDriver(r.extractor, r.opts.Workers, r.logger)
	paths, err := driver.Extract(services.WithStage(ctx, "extract"), spec)
	result.ImagePaths = paths
	if err != nil {
		r.logFailure(ctx, "extract", err)
		return result, err
	}

	logger.Info(
		"run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("images", len(paths)),
		logging.Int("warnings", len(result.Warnings)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// absorb records a non-fatal failure as a run warning and returns fatal ones.
func (r *Runner) absorb(ctx context.Context, result *Result, err error) error {
	if err == nil {
		return nil
	}
	if services.Fatal(err) {
		r.logFailure(ctx, "persist", err)
		return err
	}
	result.Warnings = append(result.Warnings, r.persistenceWarning(ctx, err))
	return nil
}

func (r *Runner) persistenceWarning(ctx context.Context, err error) string {
	logging.WarnWithContext(
		logging.WithContext(services.WithStage(ctx, "persist"), r.logger),
		"artifact not written",
		"persistence_failure",
		logging.Error(err),
		logging.String(logging.FieldImpact, "manual text or manifest missing; screenshots still extracted"),
		logging.String(logging.FieldErrorHint, "check permissions and free space in the output directory"),
	)
	return err.Error()
}

func (r *Runner) logFailure(ctx context.Context, stage string, err error) {
	logging.ErrorWithContext(
		logging.WithContext(services.WithStage(ctx, stage), r.logger),
		"run failed",
		stage+"_failure",
		logging.Error(err),
		logging.Int("exit_code", services.ExitCode(err)),
	)
}

func (r *Runner) lockOutputDir(dir string) (func(), error) {
	if !r.opts.LockOutputDir {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "pipeline", "create output dir", dir, err)
	}
	lockPath := filepath.Join(dir, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConflict, "pipeline", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConflict, "pipeline", "acquire lock", "another run is writing to "+dir, nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", logging.String("lock", lockPath), logging.Error(err))
			return
		}
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("lock file not removed", logging.String("lock", lockPath), logging.Error(err))
		}
	}, nil
}

func withRun(ctx context.Context, stage string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || strings.TrimSpace(id) == "" {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	return services.WithStage(ctx, stage)
}

func runID(ctx context.Context) string {
	id, _ := services.RunIDFromContext(ctx)
	return id
}

// Summary renders a one-line description of a result.
func (r Result) Summary() string {
	return fmt.Sprintf("%d screenshot(s) in %s", len(r.ImagePaths), r.Spec.OutputDir)
}
