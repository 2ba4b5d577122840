package config

const (
	defaultLogDir            = "~/.local/share/movie2manual/logs"
	defaultOutputDir         = "./manual_assets"
	defaultMarkdownOutput    = "manual.md"
	defaultTitle             = "Operation Manual"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFmpegTimeout     = 60
	defaultFFmpegWorkers     = 1
	maxFFmpegWorkers         = 32
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/movie2manual/movie2manual"
	defaultLLMTitle          = "movie2manual"
	defaultLLMTimeoutSeconds = 120
	defaultLogFormat         = ""
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Manual: Manual{
			OutputDir:         defaultOutputDir,
			MarkdownOutput:    defaultMarkdownOutput,
			Title:             defaultTitle,
			ValidateTimecodes: true,
		},
		FFmpeg: FFmpeg{
			Binary:         defaultFFmpegBinary,
			TimeoutSeconds: defaultFFmpegTimeout,
			Workers:        defaultFFmpegWorkers,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Run: Run{
			LockOutputDir: true,
		},
	}
}
