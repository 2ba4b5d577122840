// Package llm provides an OpenAI-compatible chat client (OpenRouter by
// default) used by the generate command to obtain a manual specification
// from a model.
//
// The client returns the model's raw text. It does not parse it: model output
// is prose-wrapped more often than not, so callers hand the text to the
// recovery package.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, optionally with an inline video.
// Client.HealthCheck: verify API key and model availability.
// BuildPrompt: the manual-extraction prompt.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Context cancellation aborts retries immediately.
package llm
