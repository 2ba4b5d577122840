// Package recovery pulls the intended JSON object out of free-form model
// output.
//
// Candidates lists substrings that might hold the object in a fixed priority
// order: the whole text, ```json fenced blocks, unlabeled fenced blocks, and
// finally the span from the first '{' to the last '}'. Recover tries each
// candidate as strict JSON, then again after RepairEscapes has escaped raw
// line breaks inside string literals, and returns the first object that
// parses. When nothing parses the caller gets an error marked
// services.ErrRecovery; no default document is ever synthesized.
package recovery
