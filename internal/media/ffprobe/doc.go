// Package ffprobe runs ffprobe against a source video and decodes the parts
// of its JSON report the manual pipeline cares about.
//
// Key types:
//   - Result: parsed ffprobe output with video streams and container format
//   - Stream: per-stream codec and frame geometry
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns the parsed Result
//
// DurationSeconds feeds the pipeline's check for screenshot times that fall
// past the end of the video.
package ffprobe
