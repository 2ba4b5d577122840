package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateManual(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateManual() error {
	if !filepath.IsLocal(c.Manual.MarkdownOutput) {
		return fmt.Errorf("manual.markdown_output must be a relative file name, got %q", c.Manual.MarkdownOutput)
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.TimeoutSeconds < 0 {
		return errors.New("ffmpeg.timeout_seconds must be zero or positive")
	}
	if c.FFmpeg.Workers < 1 || c.FFmpeg.Workers > maxFFmpegWorkers {
		return fmt.Errorf("ffmpeg.workers must be between 1 and %d", maxFFmpegWorkers)
	}
	return nil
}

// validateLLM only checks shape; a missing api_key is reported by the
// generate command, which is the only consumer.
func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// RequireLLM reports whether generate can reach a provider.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/movie2manual/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set MOVIE2MANUAL_LLM_API_KEY or OPENROUTER_API_KEY, or edit %s (create with 'movie2manual config init')", defaultPath)
	}
	return nil
}
