package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the subset of `ffprobe -show_format -show_streams` output the
// manual pipeline reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs binary (default "ffprobe") on path and decodes its JSON.
// ffprobe's stderr is folded into the returned error.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if path = strings.TrimSpace(path); path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, msg)
		}
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return s, true
		}
	}
	return Stream{}, false
}

// DurationSeconds prefers the container duration and falls back to the video
// stream. Missing values give 0; malformed ones give NaN.
func (r Result) DurationSeconds() float64 {
	if d := seconds(r.Format.Duration); d != 0 {
		return d
	}
	if s, ok := r.VideoStream(); ok {
		return seconds(s.Duration)
	}
	return 0
}

// Resolution is the video frame size as "WxH", or "" when unknown.
func (r Result) Resolution() string {
	s, ok := r.VideoStream()
	if !ok || s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	return strconv.Itoa(s.Width) + "x" + strconv.Itoa(s.Height)
}

// FrameRate parses the video stream's avg_frame_rate ("30000/1001"). It
// returns 0 when the rate is absent or undefined ("0/0").
func (r Result) FrameRate() float64 {
	s, ok := r.VideoStream()
	if !ok {
		return 0
	}
	num, den, found := strings.Cut(strings.TrimSpace(s.AvgFrameRate), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// Summary describes the video stream for status output, for example
// "1920x1080 h264 29.97fps, 60.0s".
func (r Result) Summary() string {
	var parts []string
	if res := r.Resolution(); res != "" {
		parts = append(parts, res)
	}
	if s, ok := r.VideoStream(); ok && s.CodecName != "" {
		parts = append(parts, s.CodecName)
	}
	if fps := r.FrameRate(); fps > 0 {
		parts = append(parts, strconv.FormatFloat(math.Round(fps*100)/100, 'f', -1, 64)+"fps")
	}
	text := strings.Join(parts, " ")
	if d := r.DurationSeconds(); d > 0 {
		if text != "" {
			text += ", "
		}
		text += strconv.FormatFloat(d, 'f', 1, 64) + "s"
	}
	return text
}

func seconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
