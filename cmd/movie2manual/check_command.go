package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"movie2manual/internal/config"
	"movie2manual/internal/preflight"
	"movie2manual/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var video string
	var outputDir string
	var includeLLM bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, ffprobe, the output directory, and optionally a video and the LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := preflight.Options{IncludeLLM: includeLLM}
			if v := strings.TrimSpace(video); v != "" {
				if opts.Video, err = config.ExpandPath(v); err != nil {
					return err
				}
			}
			if dir := strings.TrimSpace(outputDir); dir != "" {
				if opts.OutputDir, err = config.ExpandPath(dir); err != nil {
					return err
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, opts)
			failed := preflight.Failed(results)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderChecks(results, isTerminal(out)))
			}

			if len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, result := range failed {
					names = append(names, result.Name)
				}
				return services.Wrap(services.ErrExternalTool, "check", "", "failed: "+strings.Join(names, ", "), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&video, "video", "", "Also probe this video")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Check this output directory instead of manual.output_dir")
	cmd.Flags().BoolVar(&includeLLM, "llm", false, "Ping the configured LLM endpoint")
	return cmd
}
