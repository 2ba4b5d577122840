// Package services defines shared utilities consumed by the pipeline stages and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, run IDs and screenshot indexes
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     recovery, validation, missing-source, extraction, or persistence
//     problems, and map them to CLI exit codes.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
