package recovery

import "strings"

// RepairEscapes escapes literal line breaks that appear inside JSON string
// literals. Inside a string a raw newline becomes the two characters `\n` and
// a raw carriage return is dropped; existing escape sequences and everything
// outside strings are copied unchanged.
func RepairEscapes(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate) + 16)

	inString := false
	escaped := false
	for _, r := range candidate {
		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == '\r':
		case r == '\n':
			b.WriteString(`\n`)
		case r == '"':
			inString = false
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
