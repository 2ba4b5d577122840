package pipeline

import (
	"context"
	"fmt"
	"math"

	"movie2manual/internal/deps"
	"movie2manual/internal/logging"
	"movie2manual/internal/manual"
	"movie2manual/internal/media/ffprobe"
	"movie2manual/internal/services"
	"movie2manual/internal/timecode"
)

// probeWarnings lists screenshots scheduled past the probed video duration.
// Probe failures degrade to a single warning.
func (r *Runner) probeWarnings(ctx context.Context, spec manual.Specification) []string {
	if !r.opts.ProbeDuration || len(spec.Screenshots) == 0 {
		return nil
	}
	logger := logging.WithContext(services.WithStage(ctx, "probe"), r.logger)

	binary := deps.ResolveFFprobe(r.opts.FFprobeBinary, r.opts.FFmpegBinary)
	if !binary.Available {
		msg := fmt.Sprintf("duration probe skipped: %s", binary.Detail)
		logger.Warn(msg, logging.String(logging.FieldEventType, "probe_skipped"))
		return []string{msg}
	}
	probe, err := ffprobe.Inspect(ctx, binary.Path, spec.Video)
	if err != nil {
		msg := fmt.Sprintf("duration probe failed: %v", err)
		logger.Warn("duration probe failed", logging.String(logging.FieldEventType, "probe_failed"), logging.Error(err))
		return []string{msg}
	}
	duration := probe.DurationSeconds()
	if duration <= 0 || math.IsNaN(duration) {
		return nil
	}

	var warnings []string
	for i, entry := range spec.Screenshots {
		seconds, ok := entrySeconds(entry.Time)
		if !ok || seconds <= duration {
			continue
		}
		msg := fmt.Sprintf("screenshots[%d] %s at %s is past the end of the video (%s)",
			i, entry.Filename, entry.Time.String(), timecode.FormatMillis(int64(math.Round(duration*1000))))
		logger.Warn("screenshot past end of video",
			logging.String(logging.FieldEventType, "timecode_out_of_range"),
			logging.Int("index", i),
			logging.String("filename", entry.Filename),
			logging.Float64("video_seconds", duration),
		)
		warnings = append(warnings, msg)
	}
	return warnings
}

func entrySeconds(v timecode.Value) (float64, bool) {
	if v.IsNumeric() {
		return v.SecondsValue(), true
	}
	canonical, err := timecode.Canonicalize(v.TextValue())
	if err != nil {
		return 0, false
	}
	ms, err := timecode.ParseMillis(canonical)
	if err != nil {
		return 0, false
	}
	return float64(ms) / 1000, true
}
