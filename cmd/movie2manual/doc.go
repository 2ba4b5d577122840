// Package main hosts the movie2manual CLI entrypoint and command graph.
//
// The Cobra command tree turns model output (or a video, via the LLM) into a
// Markdown manual plus one screenshot per step. It centralizes configuration
// resolution and structured logging setup so subcommands stay thin; the work
// itself lives in internal/pipeline.
//
// Exit status follows services.ExitCode: 2 for input problems (unrecoverable
// text, invalid specification, missing video, bad configuration) and 1 for
// runtime failures such as a screenshot ffmpeg could not extract.
package main
