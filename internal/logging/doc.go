// Package logging assembles structured slog loggers and formatting helpers used
// across movie2manual.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run ID, stage and screenshot index. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Console output goes to stderr so stdout stays free for command results.
package logging
