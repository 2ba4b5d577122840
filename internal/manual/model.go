package manual

import (
	"path/filepath"

	"movie2manual/internal/timecode"
)

const (
	DefaultOutputDir      = "./manual_assets"
	DefaultMarkdownOutput = "manual.md"
	DefaultTitle          = "Operation Manual"
)

// ScreenshotEntry is one timestamped frame request.
type ScreenshotEntry struct {
	Time     timecode.Value `json:"time"`
	Filename string         `json:"filename" validate:"required,localpath"`
	Caption  *string        `json:"caption"`
}

// CaptionText returns the caption or an empty string when absent.
func (e ScreenshotEntry) CaptionText() string {
	if e.Caption == nil {
		return ""
	}
	return *e.Caption
}

// Timecode renders the entry time in the form handed to ffmpeg.
func (e ScreenshotEntry) Timecode() (string, error) {
	return timecode.Format(e.Time)
}

// Specification describes one manual-generation run. Treat values as
// read-only once Normalize returns them; Clone before modifying.
type Specification struct {
	Video          string            `json:"video" validate:"required"`
	OutputDir      string            `json:"output_dir" validate:"required"`
	MarkdownOutput string            `json:"markdown_output" validate:"required,localpath"`
	Title          string            `json:"title"`
	Author         string            `json:"author"`
	BodyMarkdown   string            `json:"body_markdown"`
	Screenshots    []ScreenshotEntry `json:"screenshots" validate:"dive"`
}

// MarkdownPath is where the Markdown body is written.
func (s Specification) MarkdownPath() string {
	return filepath.Join(s.OutputDir, s.MarkdownOutput)
}

// ImagePath is where the frame for entry is written.
func (s Specification) ImagePath(entry ScreenshotEntry) string {
	return filepath.Join(s.OutputDir, entry.Filename)
}

// ImagePaths lists output image paths in screenshot order.
func (s Specification) ImagePaths() []string {
	paths := make([]string, 0, len(s.Screenshots))
	for _, entry := range s.Screenshots {
		paths = append(paths, s.ImagePath(entry))
	}
	return paths
}

// Clone returns a deep copy.
func (s Specification) Clone() Specification {
	out := s
	if s.Screenshots != nil {
		out.Screenshots = make([]ScreenshotEntry, len(s.Screenshots))
		for i, entry := range s.Screenshots {
			if entry.Caption != nil {
				caption := *entry.Caption
				entry.Caption = &caption
			}
			out.Screenshots[i] = entry
		}
	}
	return out
}
