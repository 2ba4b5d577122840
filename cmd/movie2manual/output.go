package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"movie2manual/internal/manual"
	"movie2manual/internal/pipeline"
	"movie2manual/internal/screenshots"
	"movie2manual/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runReport struct {
	pipeline.Result
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// reportRun prints result and passes runErr through so main can map it to
// an exit status.
func reportRun(cmd *cobra.Command, ctx *commandContext, result pipeline.Result, runErr error) error {
	if ctx.jsonOutput() {
		report := runReport{Result: result, ExitCode: services.ExitCode(runErr)}
		if runErr != nil {
			report.Error = runErr.Error()
		}
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
		return runErr
	}

	out := cmd.OutOrStdout()
	if len(result.Spec.Screenshots) > 0 {
		fmt.Fprintln(out, renderPlan(result.Spec, &screenshotProgress{done: len(result.ImagePaths), err: runErr}))
	}
	if result.MarkdownPath != "" {
		fmt.Fprintf(out, "Markdown: %s\n", result.MarkdownPath)
	}
	if result.ManifestPath != "" {
		fmt.Fprintf(out, "Manifest: %s\n", result.ManifestPath)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "Warning:  %s\n", warning)
	}
	if runErr == nil {
		fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.Summary())
	}
	return runErr
}

type screenshotProgress struct {
	done int
	err  error
}

func (p *screenshotProgress) status(index int) string {
	if index < p.done {
		return "ok"
	}
	var extractionErr *screenshots.ExtractionError
	if errors.As(p.err, &extractionErr) && extractionErr.Index == index {
		return "failed"
	}
	return "skipped"
}

func renderPlan(spec manual.Specification, progress *screenshotProgress) string {
	headers := []string{"#", "Time", "Timecode", "File", "Caption"}
	if progress != nil {
		headers = append(headers, "Status")
	}
	rows := make([][]string, 0, len(spec.Screenshots))
	for i, entry := range spec.Screenshots {
		tc, err := entry.Timecode()
		if err != nil {
			tc = "invalid"
		}
		row := []string{strconv.Itoa(i + 1), entry.Time.String(), tc, entry.Filename, entry.CaptionText()}
		if progress != nil {
			row = append(row, progress.status(i))
		}
		rows = append(rows, row)
	}
	return renderTable("", headers, rows, 0, 1)
}
