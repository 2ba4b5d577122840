package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// FFmpegProbe reports what "ffmpeg -version" says about the configured binary.
type FFmpegProbe struct {
	Detected bool
	Binary   string
	Version  string
}

// ProbeFFmpeg runs "<binary> -version" and extracts the version token.
func ProbeFFmpeg(binary string) FFmpegProbe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return FFmpegProbe{Binary: binary}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, resolved, "-version").Output()
	if err != nil {
		return FFmpegProbe{Binary: resolved}
	}
	return FFmpegProbe{
		Detected: true,
		Binary:   resolved,
		Version:  parseVersion(string(output)),
	}
}

func parseVersion(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(line)
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return "unknown"
}

// Detail renders a display-friendly summary for check output.
func (p FFmpegProbe) Detail() string {
	if !p.Detected {
		return fmt.Sprintf("%s (not runnable)", p.Binary)
	}
	return fmt.Sprintf("%s (version %s)", p.Binary, p.Version)
}
