package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// debugOnlyKeys are shown on the terminal only at debug level; the JSON log
// file always carries them.
var debugOnlyKeys = map[string]bool{
	FieldRunID:     true,
	FieldEventType: true,
}

// prettyHandler renders a one-line header followed by an indented
// "key: value" list:
//
//	2026-01-02 15:04:05.000 INFO [screenshots] extract #2 – extracting screenshot
//	    - timecode: 00:00:05.000
type prettyHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string
	attrs     []field
}

type field struct {
	key   string
	value slog.Value
}

// lineHeader holds the attributes lifted out of the body.
type lineHeader struct {
	component  string
	stage      string
	screenshot string
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]field(nil), h.attrs...), collect(h.prefix, attrs)...)
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	fields := append([]field(nil), h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, collect(h.prefix, []slog.Attr{attr})...)
		return true
	})

	header, body := splitHeader(latestWins(fields))
	debug := record.Level < slog.LevelInfo

	var buf bytes.Buffer
	buf.Grow(128 + 32*len(body))
	h.writeHeader(&buf, record, header)
	for _, f := range body {
		if debugOnlyKeys[f.key] && !debug {
			continue
		}
		buf.WriteString("    - ")
		buf.WriteString(f.key)
		buf.WriteString(": ")
		if sensitiveKey(f.key) {
			buf.WriteString(redacted)
		} else {
			buf.WriteString(consoleValue(f.value))
		}
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeHeader(buf *bytes.Buffer, record slog.Record, header lineHeader) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(consoleTime(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if header.component != "" {
		buf.WriteString(" [" + header.component + "]")
	}
	if header.stage != "" {
		buf.WriteString(" " + header.stage)
	}
	if header.screenshot != "" {
		buf.WriteString(" #" + header.screenshot)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(" – ")
	buf.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			buf.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	buf.WriteByte('\n')
}

// splitHeader moves component, stage and screenshot out of fields. The first
// component wins so nested component loggers keep their outermost name.
func splitHeader(fields []field) (lineHeader, []field) {
	var header lineHeader
	body := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			if header.component == "" {
				header.component = plainString(f.value)
			}
		case FieldStage:
			header.stage = strings.TrimSpace(plainString(f.value))
		case FieldScreenshot:
			header.screenshot = plainString(f.value)
		default:
			body = append(body, f)
		}
	}
	return header, body
}

// latestWins drops repeated keys, keeping the first position and the last
// value.
func latestWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	seen := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if f.key == FieldComponent {
			out = append(out, f)
			continue
		}
		if i, ok := seen[f.key]; ok {
			out[i].value = f.value
			continue
		}
		seen[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func collect(prefix string, attrs []slog.Attr) []field {
	var out []field
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		value := attr.Value.Resolve()
		if value.Kind() == slog.KindGroup {
			out = append(out, collect(joinKey(prefix, attr.Key), value.Group())...)
			continue
		}
		out = append(out, field{key: joinKey(prefix, attr.Key), value: value})
	}
	return out
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}
