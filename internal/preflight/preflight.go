package preflight

import (
	"context"

	"movie2manual/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options selects which checks RunAll performs beyond the defaults.
type Options struct {
	// OutputDir overrides cfg.Manual.OutputDir.
	OutputDir string
	// Video is probed with ffprobe when set.
	Video string
	// IncludeLLM pings the configured LLM endpoint.
	IncludeLLM bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Detail
		if detail == "" {
			detail = status.Path
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = cfg.Manual.OutputDir
	}
	results = append(results, CheckOutputDir("Output directory", outputDir))

	if opts.Video != "" {
		results = append(results, CheckVideo(ctx, "Video", resolveFFprobe(cfg), opts.Video))
	}

	if opts.IncludeLLM {
		results = append(results, CheckLLM(ctx, "LLM", cfg.LLM))
	}

	return results
}

// Failed returns the non-optional results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed && !result.Optional {
			failed = append(failed, result)
		}
	}
	return failed
}
