package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"movie2manual/internal/language"
)

const systemPrompt = `You are a video analysis engineer. You watch screen recordings and extract
the elements needed to write an operation manual. Respond with a single JSON
object and nothing else.`

const manualExample = `{
  "video": "recordings/credentials.mp4",
  "output_dir": "./manual_assets",
  "markdown_output": "manual.md",
  "title": "Credential Setup Manual",
  "author": "Team",
  "body_markdown": "# Introduction\nThis manual covers the basic workflow.\n\n## Steps\n1. Launch the app.\n2. Create a workflow.\n3. Configure credentials.\n",
  "screenshots": [
    { "time": "00:00:03.500", "filename": "step01_start.png", "caption": "Launch the app" },
    { "time": "00:00:10.000", "filename": "step02_home.png", "caption": "Home screen" },
    { "time": "00:00:40.200", "filename": "step03_credentials.png", "caption": "Credential settings" }
  ]
}`

// PromptInput parameterizes BuildPrompt.
type PromptInput struct {
	VideoPath string
	Language  string
	Notes     string
}

// BuildPrompt returns the system and user prompts asking the model for a
// manual specification of the given video.
func BuildPrompt(in PromptInput) (string, string) {
	lang := language.PromptName(in.Language)
	var b strings.Builder
	b.WriteString("Analyze the attached video and describe an operation manual for it.\n\n")
	fmt.Fprintf(&b, "- Write `body_markdown` in %s. Reference the screenshot filenames and captions so the Markdown renders the images.\n", lang)
	b.WriteString("- List in `screenshots` the moments the manual needs as images. Always write `time` as HH:MM:SS.mmm (for example 00:00:03.500).\n")
	fmt.Fprintf(&b, "- Set `video` to %q exactly.\n", in.VideoPath)
	b.WriteString("- Derive `output_dir` and `markdown_output` from the video content using ASCII letters only.\n")
	b.WriteString("- Derive `title` and `author` from the video content.\n")
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		b.WriteString("\nAdditional notes:\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}
	b.WriteString("\nExample output:\n")
	b.WriteString(manualExample)
	b.WriteString("\n")
	return systemPrompt, b.String()
}

// VideoAttachment reads path and returns it as an inline attachment with a
// sniffed MIME type.
func VideoAttachment(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read video attachment: %w", err)
	}
	mimeType := mimetype.Detect(data).String()
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if !strings.HasPrefix(mimeType, "video/") {
		mimeType = "video/mp4"
	}
	return Attachment{MIMEType: mimeType, Data: data}, nil
}
