package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"movie2manual/internal/config"
	"movie2manual/internal/pipeline"
	"movie2manual/internal/screenshots"
	"movie2manual/internal/services"
	"movie2manual/internal/services/llm"
	"movie2manual/internal/textutil"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var overrides runOverrides
	var language string
	var notes string
	var responsePath string

	cmd := &cobra.Command{
		Use:   "generate <video>",
		Short: "Ask the configured LLM for a manual of a video, then extract it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return services.Wrap(services.ErrConfiguration, "generate", "llm", "", err)
			}
			video, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if err := screenshots.CheckSource(video); err != nil {
				return err
			}
			opts, err := overrides.apply(pipeline.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}
			opts.Normalize.DefaultVideo = video

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			attachment, err := llm.VideoAttachment(video)
			if err != nil {
				return services.Wrap(services.ErrMissingSource, "generate", "read video", video, err)
			}
			system, user := llm.BuildPrompt(llm.PromptInput{VideoPath: video, Language: language, Notes: notes})
			client := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			text, err := client.Complete(cmd.Context(), llm.Request{
				System:      system,
				User:        user,
				Attachments: []llm.Attachment{attachment},
			})
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "generate", "llm complete", cfg.LLM.Model, err)
			}

			if path := strings.TrimSpace(responsePath); path != "" {
				path = responseFile(path, video)
				if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
					return fmt.Errorf("save response: %w", err)
				}
			}
			if !ctx.jsonOutput() {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				fmt.Fprintln(cmd.OutOrStdout())
			}

			result, err := pipeline.NewRunner(opts, logger).Run(cmd.Context(), text)
			return reportRun(cmd, ctx, result, err)
		},
	}

	overrides.register(cmd)
	cmd.Flags().StringVar(&language, "language", "", "Language for the manual text (default English)")
	cmd.Flags().StringVar(&notes, "notes", "", "Extra instructions appended to the prompt")
	cmd.Flags().StringVar(&responsePath, "save-response", "", "Also write the raw model response to this file (or into this directory)")
	return cmd
}

// responseFile resolves the --save-response target. A directory receives
// "<video name>.response.txt" with filesystem-unsafe characters replaced.
func responseFile(path, video string) string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path
	}
	base := filepath.Base(video)
	name := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "response"
	}
	return filepath.Join(path, name+".response.txt")
}
