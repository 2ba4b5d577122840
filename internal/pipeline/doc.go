// Package pipeline runs one manual-generation pass: recover the specification
// from model text, normalize it, persist the Markdown body and manifest, and
// extract every screenshot.
//
// Recovery, validation, missing-source, and extraction failures abort the run
// and surface to the caller. Persistence failures are logged and returned as
// warnings on Result so that extraction still proceeds.
//
// A Runner is safe for sequential reuse. Concurrent runs against the same
// output directory are serialized by an advisory lock when LockOutputDir is
// set; otherwise they are not coordinated.
package pipeline
