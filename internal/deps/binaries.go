package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	ffmpegName  = "FFmpeg"
	ffprobeName = "FFprobe"
)

// Requirement is an external binary the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional binaries only degrade the run when absent.
	Optional bool
}

// Status is the lookup outcome for one Requirement. Path is the resolved
// executable when Available; Detail explains a failed lookup.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Requirements lists ffmpeg and ffprobe. ffprobe becomes mandatory when the
// run probes the video duration.
func Requirements(ffmpegBinary, ffprobeBinary string, probeDuration bool) []Requirement {
	return []Requirement{
		{Name: ffmpegName, Command: ffmpegBinary, Description: "Extracts screenshot frames"},
		{Name: ffprobeName, Command: ffprobeBinary, Description: "Probes video duration", Optional: !probeDuration},
	}
}

// CheckBinaries looks every requirement up on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		statuses[i] = lookup(req)
	}
	return statuses
}

// Missing filters statuses down to unavailable, non-optional binaries.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

// ResolveFFprobe picks the ffprobe that pairs with ffmpegCommand: the
// configured binary when set, else an executable ffprobe in the same
// directory as ffmpeg, else ffprobe from PATH.
func ResolveFFprobe(configured, ffmpegCommand string) Status {
	req := Requirement{Name: ffprobeName, Command: strings.TrimSpace(configured), Description: "Probes video duration"}
	if req.Command != "" {
		return lookup(req)
	}
	if ffmpegPath, err := exec.LookPath(strings.TrimSpace(ffmpegCommand)); err == nil {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
		if executable(sibling) {
			req.Command = sibling
			return Status{Requirement: req, Available: true, Path: sibling}
		}
	}
	req.Command = "ffprobe"
	return lookup(req)
}

func lookup(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

func executable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0
}
