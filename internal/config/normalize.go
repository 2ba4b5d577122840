package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeManual()
	c.normalizeFFmpeg()
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeManual keeps output_dir relative when configured that way; the
// pipeline resolves it against the working directory like ffmpeg does.
func (c *Config) normalizeManual() {
	c.Manual.OutputDir = strings.TrimSpace(c.Manual.OutputDir)
	if c.Manual.OutputDir == "" {
		c.Manual.OutputDir = defaultOutputDir
	} else if strings.HasPrefix(c.Manual.OutputDir, "~") {
		if expanded, err := expandPath(c.Manual.OutputDir); err == nil {
			c.Manual.OutputDir = expanded
		}
	}
	c.Manual.MarkdownOutput = strings.TrimSpace(c.Manual.MarkdownOutput)
	if c.Manual.MarkdownOutput == "" {
		c.Manual.MarkdownOutput = defaultMarkdownOutput
	}
	c.Manual.Title = strings.TrimSpace(c.Manual.Title)
	if c.Manual.Title == "" {
		c.Manual.Title = defaultTitle
	}
	c.Manual.Author = strings.TrimSpace(c.Manual.Author)
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.Workers == 0 {
		c.FFmpeg.Workers = defaultFFmpegWorkers
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("MOVIE2MANUAL_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
