package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// message content is either a plain string or a list of parts.
type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type part struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	VideoURL *dataRef `json:"video_url,omitempty"`
	ImageURL *dataRef `json:"image_url,omitempty"`
}

type dataRef struct {
	URL string `json:"url"`
}

// userContent places attachments as base64 data URLs before the prompt text.
func userContent(text string, attachments []Attachment) any {
	if len(attachments) == 0 {
		return text
	}
	parts := make([]part, 0, len(attachments)+1)
	for _, att := range attachments {
		mimeType := strings.TrimSpace(att.MIMEType)
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		ref := &dataRef{URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(att.Data)}
		if strings.HasPrefix(mimeType, "image/") {
			parts = append(parts, part{Type: "image_url", ImageURL: ref})
		} else {
			parts = append(parts, part{Type: "video_url", VideoURL: ref})
		}
	}
	return append(parts, part{Type: "text", Text: text})
}

type replyMessage struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

// completionReply accepts the chat schema plus the streaming "delta" and
// legacy "text" shapes some providers return for non-streamed calls.
type completionReply struct {
	Choices []struct {
		Message      replyMessage `json:"message"`
		Delta        replyMessage `json:"delta"`
		Text         string       `json:"text"`
		FinishReason string       `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// text returns the first non-blank content and the first finish reason.
func (r completionReply) text() (string, string) {
	var finish string
	for _, choice := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(choice.FinishReason)
		}
		for _, candidate := range []string{choice.Message.Content, choice.Delta.Content, choice.Text} {
			if s := strings.TrimSpace(candidate); s != "" {
				return s, finish
			}
		}
	}
	return "", finish
}

func (r completionReply) refusal() string {
	for _, choice := range r.Choices {
		for _, candidate := range []string{choice.Message.Refusal, choice.Delta.Refusal} {
			if s := strings.TrimSpace(candidate); s != "" {
				return s
			}
		}
	}
	return ""
}

// post performs one request. Non-2xx answers become *httpStatusError so the
// retry policy can inspect the status.
func (c *Client) post(ctx context.Context, payload completionRequest) (completionReply, []byte, error) {
	var reply completionReply
	body, err := json.Marshal(payload)
	if err != nil {
		return reply, nil, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return reply, nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
		req.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return reply, nil, fmt.Errorf("llm request: http error (timeout=%s): %w", c.http.Timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return reply, raw, &httpStatusError{
			status:     resp.StatusCode,
			body:       strings.TrimSpace(string(raw)),
			retryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return reply, raw, fmt.Errorf("llm request: decode response: %w", err)
	}
	if reply.Error != nil {
		return reply, raw, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(reply.Error.Message))
	}
	return reply, raw, nil
}

type httpStatusError struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.status, e.body)
}

type emptyContentError struct {
	op           string
	finishReason string
	refusal      string
	snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.op, e.finishReason, e.refusal, e.snippet)
}

// snippet collapses whitespace and keeps the first 160 runes of raw.
func snippet(raw []byte) string {
	clean := strings.Join(strings.Fields(string(raw)), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
