package screenshots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"movie2manual/internal/logging"
	"movie2manual/internal/manual"
	"movie2manual/internal/services"
)

const dirPerm = 0o755

// Driver runs one extraction pass over a Specification.
type Driver struct {
	extractor Extractor
	workers   int
	logger    *slog.Logger
}

// NewDriver constructs a Driver. workers <= 1 extracts sequentially.
func NewDriver(extractor Extractor, workers int, logger *slog.Logger) *Driver {
	if workers < 1 {
		workers = 1
	}
	return &Driver{
		extractor: extractor,
		workers:   workers,
		logger:    logging.NewComponentLogger(logger, "screenshots"),
	}
}

type job struct {
	index    int
	timecode string
	entry    manual.ScreenshotEntry
	path     string
}

// Extract produces one image per screenshot entry and returns their paths in
// input order. On failure it returns the paths written before the failing
// entry along with an *ExtractionError.
func (d *Driver) Extract(ctx context.Context, spec manual.Specification) ([]string, error) {
	if d == nil || d.extractor == nil {
		return nil, services.Wrap(services.ErrExtraction, "screenshots", "extract", "extractor not configured", nil)
	}
	if err := CheckSource(spec.Video); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(spec.OutputDir, dirPerm); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "screenshots", "create output dir", spec.OutputDir, err)
	}

	jobs := make([]job, 0, len(spec.Screenshots))
	for i, entry := range spec.Screenshots {
		tc, err := entry.Timecode()
		if err != nil {
			return nil, fmt.Errorf("screenshots[%d]: %w", i, err)
		}
		jobs = append(jobs, job{index: i, timecode: tc, entry: entry, path: spec.ImagePath(entry)})
	}

	logger := logging.WithContext(ctx, d.logger)
	start := time.Now()
	var (
		paths []string
		err   error
	)
	if d.workers == 1 || len(jobs) <= 1 {
		paths, err = d.extractSequential(ctx, spec.Video, jobs)
	} else {
		paths, err = d.extractParallel(ctx, logger, spec.Video, jobs)
	}
	if err != nil {
		logger.Error("screenshot extraction failed",
			logging.Int("produced", len(paths)),
			logging.Int("requested", len(jobs)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "extraction_failed"),
		)
		return paths, err
	}
	logger.Info("screenshots extracted",
		logging.Int("count", len(paths)),
		logging.String("output_dir", spec.OutputDir),
		logging.Duration("elapsed", time.Since(start)),
	)
	return paths, nil
}

func (d *Driver) extractSequential(ctx context.Context, video string, jobs []job) ([]string, error) {
	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if err := d.run(ctx, video, j); err != nil {
			return paths, err
		}
		paths = append(paths, j.path)
	}
	return paths, nil
}

// extractParallel schedules jobs in input order on a bounded group. Once an
// entry fails no later entry is scheduled; in-flight later entries finish and
// their frames are discarded so the committed set matches a sequential run.
func (d *Driver) extractParallel(ctx context.Context, logger *slog.Logger, video string, jobs []job) ([]string, error) {
	var (
		mu        sync.Mutex
		firstFail = -1
		failErr   error
		done      = make([]bool, len(jobs))
	)
	failedBefore := func(index int) bool {
		mu.Lock()
		defer mu.Unlock()
		return firstFail >= 0 && firstFail < index
	}

	var g errgroup.Group
	g.SetLimit(d.workers)
	for _, j := range jobs {
		if failedBefore(j.index) {
			break
		}
		g.Go(func() error {
			err := d.run(ctx, video, j)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstFail < 0 || j.index < firstFail {
					firstFail = j.index
					failErr = err
				}
				return nil
			}
			done[j.index] = true
			return nil
		})
	}
	_ = g.Wait()

	if firstFail < 0 {
		paths := make([]string, len(jobs))
		for i, j := range jobs {
			paths[i] = j.path
		}
		return paths, nil
	}

	paths := make([]string, 0, firstFail)
	for _, j := range jobs[:firstFail] {
		paths = append(paths, j.path)
	}
	for _, j := range jobs[firstFail+1:] {
		if !done[j.index] || committed(paths, j.path) {
			continue
		}
		if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("discard frame after failure",
				logging.String("path", j.path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "discard_failed"),
			)
		}
	}
	return paths, failErr
}

func (d *Driver) run(ctx context.Context, video string, j job) error {
	if err := ctx.Err(); err != nil {
		return &ExtractionError{Index: j.index, Timecode: j.timecode, Filename: j.entry.Filename, Err: err}
	}
	ctx = services.WithScreenshot(ctx, j.index)
	logging.WithContext(ctx, d.logger).Debug("extracting screenshot",
		logging.String("timecode", j.timecode),
		logging.String("path", j.path),
	)
	if err := d.extractor.ExtractFrame(ctx, video, j.timecode, j.path); err != nil {
		return &ExtractionError{Index: j.index, Timecode: j.timecode, Filename: j.entry.Filename, Err: err}
	}
	return nil
}

// committed reports whether path belongs to an entry that is kept, which
// happens when duplicate filenames are allowed.
func committed(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}

// CheckSource fails with ErrMissingSource when video is a local path that
// does not exist. URLs are left to the extractor.
func CheckSource(video string) error {
	if video == "" {
		return services.Wrap(services.ErrMissingSource, "screenshots", "check source", "video not set", nil)
	}
	if isRemote(video) {
		return nil
	}
	info, err := os.Stat(video)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrMissingSource, "screenshots", "check source", video, err)
		}
		return services.Wrap(services.ErrMissingSource, "screenshots", "stat source", video, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrMissingSource, "screenshots", "check source", video+" is a directory", nil)
	}
	return nil
}

func isRemote(video string) bool {
	if filepath.IsAbs(video) {
		return false
	}
	parsed, err := url.Parse(video)
	if err != nil {
		return false
	}
	return len(parsed.Scheme) > 1 && parsed.Host != ""
}
