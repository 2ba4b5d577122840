package recovery_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"movie2manual/internal/recovery"
	"movie2manual/internal/services"
)

func TestCandidatesPriorityOrder(t *testing.T) {
	text := "intro {\"a\":0}\n```JSON\n{\"a\":1}\n```\nmid\n```\n{\"a\":2}\n```\n```json\n{\"a\":3}\n```\nend"
	got := recovery.Candidates(text)

	want := []recovery.Candidate{
		{Source: recovery.SourceWholeText, Text: text},
		{Source: recovery.SourceJSONFence, Text: `{"a":1}`},
		{Source: recovery.SourceJSONFence, Text: `{"a":3}`},
		{Source: recovery.SourceFence, Text: `{"a":2}`},
		{Source: recovery.SourceBraceSpan, Text: text[strings.Index(text, "{") : strings.LastIndex(text, "}")+1]},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestCandidatesEmptyAndBraceless(t *testing.T) {
	if got := recovery.Candidates("   \n"); len(got) != 0 {
		t.Fatalf("expected no candidates for blank text, got %#v", got)
	}
	got := recovery.Candidates("no json here")
	if len(got) != 1 || got[0].Source != recovery.SourceWholeText {
		t.Fatalf("expected only the whole-text candidate, got %#v", got)
	}
	got = recovery.Candidates("} backwards {")
	if len(got) != 1 {
		t.Fatalf("expected brace span to be skipped when '}' precedes '{', got %#v", got)
	}
}

func TestCandidatesDeduplicates(t *testing.T) {
	text := `{"video":"a.mp4"}`
	got := recovery.Candidates(text)
	if len(got) != 1 {
		t.Fatalf("expected brace span equal to whole text to be dropped, got %#v", got)
	}
}

func TestRecoverWholeTextWinsWhenValid(t *testing.T) {
	text := "{\"pick\":\"whole\", \"note\":\"```json {\\\"pick\\\":\\\"fence\\\"} ```\"}"
	result, err := recovery.Recover(text)
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	if result.Candidate.Source != recovery.SourceWholeText {
		t.Fatalf("expected whole text to win, got %s", result.Candidate.Source)
	}
	if result.Document["pick"] != "whole" {
		t.Fatalf("unexpected document %#v", result.Document)
	}
}

func TestRecoverFallsBackToJSONFence(t *testing.T) {
	text := "Here is the plan:\n```json\n{\"video\":\"a.mp4\",\"screenshots\":[{\"time\":3.5,\"filename\":\"s1.png\"}]}\n```"
	result, err := recovery.Recover(text)
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	if result.Candidate.Source != recovery.SourceJSONFence {
		t.Fatalf("expected json fence candidate, got %s", result.Candidate.Source)
	}
	if result.Attempts != 2 {
		t.Fatalf("expected two attempts, got %d", result.Attempts)
	}
	shots, ok := result.Document["screenshots"].([]any)
	if !ok || len(shots) != 1 {
		t.Fatalf("unexpected screenshots %#v", result.Document["screenshots"])
	}
	first := shots[0].(map[string]any)
	if first["time"] != json.Number("3.5") {
		t.Fatalf("expected json.Number time, got %#v", first["time"])
	}
}

func TestRecoverFencedBlockBeatsMalformedWholeText(t *testing.T) {
	text := "{\"broken\": true,\n```json\n{\"pick\":\"fence\"}\n```"
	result, err := recovery.Recover(text)
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	if result.Document["pick"] != "fence" {
		t.Fatalf("expected fenced content, got %#v", result.Document)
	}
}

func TestRecoverUsesBraceSpan(t *testing.T) {
	text := "Sure! Here it is {\"video\":\"clip.mp4\"} -- enjoy."
	result, err := recovery.Recover(text)
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	if result.Candidate.Source != recovery.SourceBraceSpan {
		t.Fatalf("expected brace span, got %s", result.Candidate.Source)
	}
	if result.Document["video"] != "clip.mp4" {
		t.Fatalf("unexpected document %#v", result.Document)
	}
}

func TestRecoverRepairsLiteralNewlines(t *testing.T) {
	text := "{\"body_markdown\":\"# Title\r\nline two\nline \\\"three\\\"\",\"video\":\"a.mp4\"}"
	result, err := recovery.Recover(text)
	if err != nil {
		t.Fatalf("Recover returned error: %v", err)
	}
	if !result.Repaired {
		t.Fatal("expected repair pass to be used")
	}
	if got := result.Document["body_markdown"]; got != "# Title\nline two\nline \"three\"" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRecoverRejectsNonObjects(t *testing.T) {
	_, err := recovery.Recover(`[1, 2, 3]`)
	if !errors.Is(err, services.ErrRecovery) {
		t.Fatalf("expected recovery failure for array payload, got %v", err)
	}
}

func TestRecoverFailureIsTyped(t *testing.T) {
	_, err := recovery.Recover("I could not produce a manual for this video.")
	if !errors.Is(err, services.ErrRecovery) {
		t.Fatalf("expected recovery failure, got %v", err)
	}
	var recErr *recovery.Error
	if !errors.As(err, &recErr) {
		t.Fatalf("expected *recovery.Error, got %T", err)
	}
	if recErr.Candidates != 1 {
		t.Fatalf("expected one candidate, got %d", recErr.Candidates)
	}

	_, err = recovery.Recover("")
	if !errors.As(err, &recErr) || recErr.Candidates != 0 {
		t.Fatalf("expected zero-candidate failure, got %v", err)
	}
}

func TestTryParseRejectsTrailingData(t *testing.T) {
	if _, err := recovery.TryParse(`{"a":1} trailing`); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
	if _, err := recovery.TryParse("  {\"a\":1}\n\t"); err != nil {
		t.Fatalf("expected surrounding whitespace to be accepted: %v", err)
	}
}
