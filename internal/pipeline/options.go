package pipeline

import (
	"time"

	"movie2manual/internal/config"
	"movie2manual/internal/manual"
)

// Options is the resolved, immutable view of configuration a Runner needs.
type Options struct {
	Normalize manual.Options

	FFmpegBinary  string
	FFprobeBinary string
	FFmpegTimeout time.Duration
	Workers       int

	// ProbeDuration warns about screenshots past the end of the video.
	ProbeDuration bool
	// LockOutputDir holds an advisory lock on the output directory for the
	// duration of a run.
	LockOutputDir bool
}

// OptionsFromConfig derives runner options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return Options{
		Normalize: manual.Options{
			DefaultOutputDir:        cfg.Manual.OutputDir,
			DefaultMarkdownOutput:   cfg.Manual.MarkdownOutput,
			DefaultTitle:            cfg.Manual.Title,
			DefaultAuthor:           cfg.Manual.Author,
			SkipTimecodeValidation:  !cfg.Manual.ValidateTimecodes,
			AllowDuplicateFilenames: cfg.Manual.AllowDuplicateFilenames,
		},
		FFmpegBinary:  cfg.FFmpeg.Binary,
		FFprobeBinary: cfg.FFmpeg.FFprobeBinary,
		FFmpegTimeout: cfg.FFmpegTimeout(),
		Workers:       cfg.FFmpeg.Workers,
		ProbeDuration: cfg.FFmpeg.ProbeDuration,
		LockOutputDir: cfg.Run.LockOutputDir,
	}
}
