package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"movie2manual/internal/manual"
	"movie2manual/internal/recovery"
	"movie2manual/internal/services"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Manifest is the on-disk record of a run.
type Manifest struct {
	Spec      manual.Specification `json:"spec"`
	RunID     string               `json:"run_id,omitempty"`
	CreatedAt string               `json:"created_at,omitempty"`
}

// Path returns the manifest location for spec.
func Path(spec manual.Specification) string {
	return filepath.Join(spec.OutputDir, FileName)
}

// WriteMarkdown writes the body verbatim to spec.MarkdownPath().
func WriteMarkdown(spec manual.Specification) (string, error) {
	path := spec.MarkdownPath()
	if err := writeFile(path, []byte(spec.BodyMarkdown)); err != nil {
		return "", services.Wrap(services.ErrPersistence, "manifest", "write markdown", path, err)
	}
	return path, nil
}

// Write stores spec as manifest.json in its output directory.
func Write(spec manual.Specification, runID string) (string, error) {
	path := Path(spec)
	payload, err := Encode(Manifest{
		Spec:      spec,
		RunID:     runID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", services.Wrap(services.ErrPersistence, "manifest", "encode manifest", path, err)
	}
	if err := writeFile(path, payload); err != nil {
		return "", services.Wrap(services.ErrPersistence, "manifest", "write manifest", path, err)
	}
	return path, nil
}

// Encode renders m as indented JSON, keeping non-ASCII text readable.
func Encode(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads a manifest or bare specification document from path. The file
// passes through the recoverer, so fenced or prose-wrapped JSON is accepted.
func Load(path string) (recovery.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrMissingSource, "manifest", "read", path, err)
		}
		return nil, services.Wrap(services.ErrPersistence, "manifest", "read", path, err)
	}
	result, err := recovery.Recover(string(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return Unwrap(result.Document), nil
}

// Unwrap returns the embedded "spec" object of a manifest, or doc itself
// when it is already a specification.
func Unwrap(doc recovery.Document) recovery.Document {
	if inner, ok := doc["spec"].(map[string]any); ok {
		return inner
	}
	return doc
}

func writeFile(path string, data []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(filePerm))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if cleanupErr := pending.Cleanup(); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()
	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}
