package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"movie2manual/internal/recovery"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 120 * time.Second
)

// Config holds the endpoint and credentials for an OpenAI-compatible chat
// completion API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client sends chat completions and retries transient failures.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts bounds the number of requests per completion.
// Values below one mean a single attempt.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff sets the first retry delay and the ceiling it doubles up to.
func WithRetryBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) {
		c.retry.base = base
		c.retry.ceiling = ceiling
	}
}

// WithSleeper replaces the wait between attempts. Tests use it to avoid
// real sleeps.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleep = sleep }
}

// NewClient builds a client from cfg. An empty BaseURL targets OpenRouter.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attachment is inline media sent ahead of the user prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is one chat completion.
type Request struct {
	System      string
	User        string
	Attachments []Attachment
	Temperature float64
}

// Complete sends req and returns the model text untouched; callers recover
// JSON from it themselves.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	const op = "llm complete"
	system := strings.TrimSpace(req.System)
	user := strings.TrimSpace(req.User)
	switch {
	case system == "":
		return "", errors.New(op + ": system prompt required")
	case user == "":
		return "", errors.New(op + ": user prompt required")
	case c.cfg.APIKey == "":
		return "", errors.New(op + ": api key required")
	}
	return c.complete(ctx, op, completionRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: userContent(user, req.Attachments)},
		},
		Temperature: req.Temperature,
	})
}

// HealthCheck asks the model for {"ok":true} to prove the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	const op = "llm health"
	if c.cfg.APIKey == "" {
		return errors.New(op + ": api key required")
	}
	text, err := c.complete(ctx, op, completionRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: `Respond with {"ok":true}`},
		},
	})
	if err != nil {
		return err
	}
	result, err := recovery.Recover(text)
	if err != nil {
		return fmt.Errorf("%s: parse payload: %w", op, err)
	}
	if ok, _ := result.Document["ok"].(bool); !ok {
		return errors.New(op + ": unexpected response")
	}
	return nil
}

func (c *Client) complete(ctx context.Context, op string, payload completionRequest) (string, error) {
	attempts := c.retry.maxAttempts()
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var reply completionReply
		var raw []byte
		reply, raw, err = c.post(ctx, payload)
		if err == nil {
			text, finish := reply.text()
			if text != "" {
				return text, nil
			}
			if len(reply.Choices) == 0 {
				err = fmt.Errorf("%s: empty choices", op)
			} else {
				err = &emptyContentError{op: op, finishReason: finish, refusal: reply.refusal(), snippet: snippet(raw)}
			}
		}

		delay, again := c.retry.next(ctx, err, attempt)
		if !again {
			return "", err
		}
		if waitErr := c.retry.wait(ctx, delay); waitErr != nil {
			return "", waitErr
		}
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, err)
}
