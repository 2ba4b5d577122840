package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"movie2manual/internal/services"
)

// Document is the generic key/value mapping recovered from text. Numbers are
// kept as json.Number so integer and fractional second counts survive intact.
type Document = map[string]any

// Result describes a successful recovery.
type Result struct {
	Document  Document
	Candidate Candidate
	// Repaired is true when the escape-repair pass was needed.
	Repaired bool
	// Attempts counts candidates tried, including the successful one.
	Attempts int
}

// Error reports that no candidate parsed under either pass.
type Error struct {
	Candidates int
	Snippet    string
	Last       error
}

func (e *Error) Error() string {
	if e.Candidates == 0 {
		return "recovery: no JSON candidates in model output (payload snippet: " + e.Snippet + ")"
	}
	return fmt.Sprintf("recovery: no valid JSON object in %d candidates (payload snippet: %s)", e.Candidates, e.Snippet)
}

// Unwrap exposes the recovery marker and the last parse error.
func (e *Error) Unwrap() []error {
	if e.Last == nil {
		return []error{services.ErrRecovery}
	}
	return []error{services.ErrRecovery, e.Last}
}

var errNotObject = errors.New("top-level JSON value is not an object")

// Recover returns the first candidate of text that parses as a JSON object,
// trying each candidate strictly and then with RepairEscapes applied.
func Recover(text string) (Result, error) {
	candidates := Candidates(text)
	var last error
	for i, candidate := range candidates {
		doc, repaired, err := attempt(candidate.Text)
		if err == nil {
			return Result{Document: doc, Candidate: candidate, Repaired: repaired, Attempts: i + 1}, nil
		}
		last = err
	}
	return Result{}, &Error{
		Candidates: len(candidates),
		Snippet:    summarizePayloadSnippet(text),
		Last:       last,
	}
}

func attempt(candidate string) (Document, bool, error) {
	doc, err := TryParse(candidate)
	if err == nil {
		return doc, false, nil
	}
	repaired := RepairEscapes(candidate)
	if repaired == candidate {
		return nil, false, err
	}
	doc, err = TryParse(repaired)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// TryParse strictly decodes candidate as a single JSON object. Trailing
// non-whitespace data, literal control characters in strings, and non-object
// top-level values are all rejected.
func TryParse(candidate string) (Document, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	doc, ok := value.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return doc, nil
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := replacer.Replace(trimmed)
	clean = strings.Join(strings.Fields(clean), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
