package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"movie2manual/internal/config"
	"movie2manual/internal/manifest"
	"movie2manual/internal/manual"
	"movie2manual/internal/pipeline"
	"movie2manual/internal/recovery"
	"movie2manual/internal/services"
)

type runOverrides struct {
	video     string
	outputDir string
	workers   int
}

func (o *runOverrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.video, "video", "", "Video used when the specification omits one")
	cmd.Flags().StringVarP(&o.outputDir, "output-dir", "o", "", "Write artifacts here instead of the specification's output_dir")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "Parallel ffmpeg extractions (default from config)")
}

func (o *runOverrides) apply(opts pipeline.Options) (pipeline.Options, error) {
	if video := strings.TrimSpace(o.video); video != "" {
		expanded, err := config.ExpandPath(video)
		if err != nil {
			return opts, err
		}
		opts.Normalize.DefaultVideo = expanded
	}
	if dir := strings.TrimSpace(o.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return opts, err
		}
		opts.Normalize.OutputDir = expanded
	}
	if o.workers != 0 {
		if o.workers < 1 || o.workers > 32 {
			return opts, services.Wrap(services.ErrConfiguration, "cli", "workers", fmt.Sprintf("must be between 1 and 32, got %d", o.workers), nil)
		}
		opts.Workers = o.workers
	}
	return opts, nil
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var overrides runOverrides
	var specFile bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "extract [response-file|-]",
		Short: "Recover a manual specification from model output and extract its screenshots",
		Long: "Reads model output (from a file, or stdin when omitted or \"-\"), recovers the\n" +
			"JSON specification it contains, writes the Markdown body and manifest, and\n" +
			"extracts one frame per screenshot with ffmpeg.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := overrides.apply(pipeline.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}

			if dryRun {
				raw, _, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				return planOnly(cmd, ctx, raw, opts.Normalize)
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(opts, logger)

			var result pipeline.Result
			if specFile && len(args) == 1 && args[0] != "-" {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				result, err = runner.RunDocument(cmd.Context(), path)
				return reportRun(cmd, ctx, result, err)
			}
			raw, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if specFile {
				recovered, err := recovery.Recover(raw)
				if err != nil {
					return err
				}
				result, err = runner.RunSpecDocument(cmd.Context(), manifest.Unwrap(recovered.Document))
				return reportRun(cmd, ctx, result, err)
			}
			result, err = runner.Run(cmd.Context(), raw)
			return reportRun(cmd, ctx, result, err)
		},
	}

	overrides.register(cmd)
	cmd.Flags().BoolVar(&specFile, "spec", false, "Treat the input (file or stdin) as a specification document or manifest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the screenshot plan without writing anything")
	return cmd
}

func planOnly(cmd *cobra.Command, ctx *commandContext, raw string, opts manual.Options) error {
	recovered, err := recovery.Recover(raw)
	if err != nil {
		return err
	}
	spec, err := manual.Normalize(recovered.Document, opts)
	if err != nil {
		return err
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, spec)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Video:  %s\nOutput: %s\n", spec.Video, spec.OutputDir)
	fmt.Fprintln(out, renderPlan(spec, nil))
	return nil
}
