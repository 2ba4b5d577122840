package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"movie2manual/internal/config"
	"movie2manual/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, inspect and validate the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx), newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return services.Wrap(services.ErrConfiguration, "config", "init",
						target+" already exists (use --overwrite to replace it)", nil)
				case !errors.Is(statErr, fs.ErrNotExist):
					return services.Wrap(services.ErrConfiguration, "config", "init", "stat "+target, statErr)
				}
			}
			if err := config.CreateSample(target, overwrite); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "init", "write sample", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key (or export OPENROUTER_API_KEY) before using `movie2manual generate`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// configTarget expands path, defaulting to the per-user config location.
func configTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "config", "init", "default path", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(path)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "config", "init", "expand "+path, err)
	}
	return target, nil
}

type configSummary struct {
	Path       string `json:"path"`
	FromFile   bool   `json:"from_file"`
	OutputDir  string `json:"output_dir"`
	FFmpeg     string `json:"ffmpeg"`
	Workers    int    `json:"workers"`
	Model      string `json:"model"`
	LLMEnabled bool   `json:"llm_enabled"`
	Valid      bool   `json:"valid"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report the effective settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(ctx.flags.config))
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
			}
			summary := configSummary{
				Path:       path,
				FromFile:   exists,
				OutputDir:  cfg.Manual.OutputDir,
				FFmpeg:     cfg.FFmpeg.Binary,
				Workers:    cfg.FFmpeg.Workers,
				Model:      cfg.LLM.Model,
				LLMEnabled: cfg.RequireLLM() == nil,
				Valid:      true,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			source := "file"
			if !summary.FromFile {
				source = "defaults (file not found)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("Configuration", []string{"Setting", "Value"}, [][]string{
				{"Path", summary.Path},
				{"Source", source},
				{"Output dir", summary.OutputDir},
				{"FFmpeg", summary.FFmpeg},
				{"Workers", strconv.Itoa(summary.Workers)},
				{"LLM model", summary.Model},
			}))
			if !summary.LLMEnabled {
				fmt.Fprintln(out, "LLM API key not set; `generate` is unavailable")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as TOML (API key masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "show", "encode", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
