package recovery

import (
	"regexp"
	"strings"
)

// Source identifies which enumeration rule produced a candidate.
type Source string

const (
	SourceWholeText Source = "whole_text"
	SourceJSONFence Source = "json_fence"
	SourceFence     Source = "fence"
	SourceBraceSpan Source = "brace_span"
)

// Candidate is a substring hypothesized to hold the JSON object.
type Candidate struct {
	Source Source
	Text   string
}

var (
	jsonFencePattern = regexp.MustCompile("(?i)```json\\s*(\\{[\\s\\S]*?\\})\\s*```")
	anyFencePattern  = regexp.MustCompile("```\\s*(\\{[\\s\\S]*?\\})\\s*```")
)

// Candidates enumerates possible JSON substrings of text, highest priority
// first. A candidate whose text equals an earlier one is dropped. Blank input
// yields no candidates.
func Candidates(text string) []Candidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []Candidate
	seen := make(map[string]struct{})
	add := func(source Source, value string) {
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, Candidate{Source: source, Text: value})
	}

	add(SourceWholeText, text)
	for _, match := range jsonFencePattern.FindAllStringSubmatch(text, -1) {
		add(SourceJSONFence, match[1])
	}
	for _, match := range anyFencePattern.FindAllStringSubmatch(text, -1) {
		add(SourceFence, match[1])
	}
	if first, last := strings.Index(text, "{"), strings.LastIndex(text, "}"); first >= 0 && last > first {
		add(SourceBraceSpan, text[first:last+1])
	}
	return out
}
