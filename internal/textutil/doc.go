// Package textutil provides small text helpers shared by the manual pipeline:
// Unicode normalization and safety checks for file names that arrive from
// model output.
package textutil
