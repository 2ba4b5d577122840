// Package manual defines the manual specification model and turns recovered
// JSON documents into validated Specification values.
//
// Normalize fills defaults for optional fields, substitutes a caller-supplied
// video path when the document omits one, canonicalizes screenshot times, and
// rejects the whole document on the first malformed screenshot entry. The
// result is all-or-nothing: callers either get a complete Specification or a
// *ValidationError naming the offending field and index.
package manual
