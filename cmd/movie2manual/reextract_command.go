package main

import (
	"github.com/spf13/cobra"

	"movie2manual/internal/config"
	"movie2manual/internal/pipeline"
)

func newReextractCommand(ctx *commandContext) *cobra.Command {
	var overrides runOverrides

	cmd := &cobra.Command{
		Use:   "reextract <manifest.json>",
		Short: "Extract every screenshot of a previous run again from its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := overrides.apply(pipeline.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			result, err := pipeline.NewRunner(opts, logger).Reextract(cmd.Context(), path)
			return reportRun(cmd, ctx, result, err)
		},
	}

	overrides.register(cmd)
	return cmd
}
