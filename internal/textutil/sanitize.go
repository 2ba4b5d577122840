package textutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// NormalizeName trims surrounding whitespace and applies Unicode NFC so that
// names composed differently by the model (e.g. decomposed kana) map to the
// same file on disk.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// SanitizeFileName replaces filesystem-unsafe characters in a single path
// element. Slashes, backslashes, colons, and asterisks become dashes; other
// unsafe characters are removed.
func SanitizeFileName(name string) string {
	name = NormalizeName(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// IsLocalPath reports whether name stays inside the directory it is joined
// to: not absolute, not empty, and no ".." escape.
func IsLocalPath(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(name))
}
