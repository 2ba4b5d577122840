package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FFmpegStubFailEnv names the variable holding a timecode the ffmpeg stub
// refuses, exiting with status 1.
const FFmpegStubFailEnv = "MOVIE2MANUAL_STUB_FFMPEG_FAIL"

// FFprobeStubDurationEnv overrides the duration, in seconds, the ffprobe
// stub reports. The default is 60.
const FFprobeStubDurationEnv = "MOVIE2MANUAL_STUB_FFPROBE_DURATION"

const ffmpegStubScript = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 7.1-stub Copyright (c) 2000-2024 the FFmpeg developers"
  exit 0
fi
log="$(dirname "$0")/ffmpeg.calls"
printf '%s\n' "$*" >> "$log"
if [ -n "$MOVIE2MANUAL_STUB_FFMPEG_FAIL" ]; then
  case " $* " in
    *" -ss $MOVIE2MANUAL_STUB_FFMPEG_FAIL "*)
      echo "seek failed" >&2
      exit 1
      ;;
  esac
fi
for last; do :; done
printf 'frame' > "$last"
exit 0
`

// FFmpegStub is a shell script standing in for ffmpeg. It records each
// invocation and writes a placeholder frame to its last argument.
type FFmpegStub struct {
	Path string
	log  string
}

// WriteFFmpegStub installs the stub as dir/ffmpeg.
func WriteFFmpegStub(t testing.TB, dir string) FFmpegStub {
	t.Helper()

	path := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte(ffmpegStubScript), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	return FFmpegStub{Path: path, log: filepath.Join(dir, "ffmpeg.calls")}
}

// Calls returns the recorded argument lists, one per invocation.
func (s FFmpegStub) Calls(t testing.TB) []string {
	t.Helper()

	data, err := os.ReadFile(s.log)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read ffmpeg stub log: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

const ffprobeStubScript = `#!/bin/sh
duration="${MOVIE2MANUAL_STUB_FFPROBE_DURATION:-60}"
cat <<JSON
{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":1920,"height":1080,"avg_frame_rate":"25/1","duration":"$duration"}],"format":{"filename":"stub","duration":"$duration","format_name":"mov,mp4"}}
JSON
`

// WriteFFprobeStub installs dir/ffprobe, which prints a single 1080p video
// stream whose duration honours FFprobeStubDurationEnv.
func WriteFFprobeStub(t testing.TB, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(path, []byte(ffprobeStubScript), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}
	return path
}
