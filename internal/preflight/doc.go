// Package preflight provides readiness checks for the binaries, directories,
// videos, and LLM endpoint a manual run depends on.
//
// The CLI "check" command renders every result; the pipeline calls
// CheckVideo and the dependency checks before any frame is extracted so a
// missing ffmpeg fails in milliseconds rather than on the first screenshot.
package preflight
