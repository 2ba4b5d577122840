package manual

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"movie2manual/internal/recovery"
	"movie2manual/internal/textutil"
	"movie2manual/internal/timecode"
)

// Options tunes Normalize. The zero value applies the package defaults,
// validates string timecodes, and rejects duplicate filenames.
type Options struct {
	// DefaultVideo replaces a missing or empty "video" field.
	DefaultVideo string
	// OutputDir, when set, overrides the document's "output_dir".
	OutputDir string

	DefaultOutputDir      string
	DefaultMarkdownOutput string
	DefaultTitle          string
	DefaultAuthor         string

	// SkipTimecodeValidation hands string times to ffmpeg untouched.
	SkipTimecodeValidation bool
	// AllowDuplicateFilenames lets later entries overwrite earlier frames.
	AllowDuplicateFilenames bool
}

// Normalize converts a recovered document into a Specification. The first
// malformed field rejects the whole document.
func Normalize(doc recovery.Document, opts Options) (Specification, error) {
	if doc == nil {
		return Specification{}, fieldError("specification", "document is empty")
	}

	video, err := optionalString(doc, "video")
	if err != nil {
		return Specification{}, err
	}
	video = strings.TrimSpace(video)
	if video == "" {
		video = strings.TrimSpace(opts.DefaultVideo)
	}
	if video == "" {
		return Specification{}, fieldError("video", "is required")
	}

	outputDir, err := optionalString(doc, "output_dir")
	if err != nil {
		return Specification{}, err
	}
	outputDir = firstNonEmpty(opts.OutputDir, outputDir, opts.DefaultOutputDir, DefaultOutputDir)

	markdownOutput, err := optionalString(doc, "markdown_output")
	if err != nil {
		return Specification{}, err
	}
	markdownOutput = textutil.NormalizeName(firstNonEmpty(markdownOutput, opts.DefaultMarkdownOutput, DefaultMarkdownOutput))

	title, err := optionalString(doc, "title")
	if err != nil {
		return Specification{}, err
	}
	author, err := optionalString(doc, "author")
	if err != nil {
		return Specification{}, err
	}
	body, err := optionalString(doc, "body_markdown")
	if err != nil {
		return Specification{}, err
	}

	shots, err := normalizeScreenshots(doc["screenshots"], opts)
	if err != nil {
		return Specification{}, err
	}

	spec := Specification{
		Video:          video,
		OutputDir:      outputDir,
		MarkdownOutput: markdownOutput,
		Title:          firstNonEmpty(title, opts.DefaultTitle, DefaultTitle),
		Author:         firstNonEmpty(author, opts.DefaultAuthor),
		BodyMarkdown:   body,
		Screenshots:    shots,
	}
	if err := spec.Validate(); err != nil {
		return Specification{}, err
	}
	return spec, nil
}

func normalizeScreenshots(raw any, opts Options) ([]ScreenshotEntry, error) {
	if raw == nil {
		return []ScreenshotEntry{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fieldError("screenshots", fmt.Sprintf("must be an array, got %s", typeName(raw)))
	}

	entries := make([]ScreenshotEntry, 0, len(items))
	seen := make(map[string]int, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, entryError(i, "", fmt.Sprintf("must be an object, got %s", typeName(item)))
		}
		entry, err := normalizeEntry(i, obj, opts)
		if err != nil {
			return nil, err
		}
		if !opts.AllowDuplicateFilenames {
			if prev, dup := seen[entry.Filename]; dup {
				return nil, entryError(i, "filename", fmt.Sprintf("duplicates screenshots[%d] (%q)", prev, entry.Filename))
			}
			seen[entry.Filename] = i
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func normalizeEntry(index int, obj map[string]any, opts Options) (ScreenshotEntry, error) {
	var entry ScreenshotEntry

	rawTime, present := obj["time"]
	if !present || rawTime == nil {
		return entry, entryError(index, "time", "is required")
	}
	value, err := timecode.FromAny(rawTime)
	if err != nil {
		if number, ok := rawTime.(json.Number); ok {
			return entry, entryError(index, "time", fmt.Sprintf("number %s is out of range", number))
		}
		return entry, entryError(index, "time", fmt.Sprintf("must be a string or number, got %s", typeName(rawTime)))
	}
	if value.IsNumeric() {
		seconds := value.SecondsValue()
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
			return entry, entryError(index, "time", fmt.Sprintf("must be a non-negative second count, got %v", seconds))
		}
		if !timecode.InRange(seconds) {
			return entry, entryError(index, "time", fmt.Sprintf("second count %v is out of range", seconds))
		}
	} else if !opts.SkipTimecodeValidation {
		canonical, err := timecode.Canonicalize(value.TextValue())
		if err != nil {
			return entry, entryError(index, "time", fmt.Sprintf("%q is not a timecode (want HH:MM:SS.mmm)", value.TextValue()))
		}
		value = timecode.Text(canonical)
	}
	entry.Time = value

	rawName, present := obj["filename"]
	if !present || rawName == nil {
		return entry, entryError(index, "filename", "is required")
	}
	name, ok := rawName.(string)
	if !ok {
		return entry, entryError(index, "filename", fmt.Sprintf("must be a string, got %s", typeName(rawName)))
	}
	name = textutil.NormalizeName(name)
	if name == "" {
		return entry, entryError(index, "filename", "is required")
	}
	entry.Filename = name

	if rawCaption, present := obj["caption"]; present && rawCaption != nil {
		caption, ok := rawCaption.(string)
		if !ok {
			return entry, entryError(index, "caption", fmt.Sprintf("must be a string, got %s", typeName(rawCaption)))
		}
		entry.Caption = &caption
	}
	return entry, nil
}

// optionalString reads key as a string. Missing and null values yield "".
func optionalString(doc recovery.Document, key string) (string, error) {
	raw, present := doc[key]
	if !present || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fieldError(key, fmt.Sprintf("must be a string, got %s", typeName(raw)))
	}
	return value, nil
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64, float32, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
