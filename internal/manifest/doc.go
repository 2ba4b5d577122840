// Package manifest persists the artifacts of a manual run: the Markdown body
// and a manifest.json holding the normalized specification.
//
// Writes go through renameio so readers never observe a half-written file.
// Load accepts either a manifest ({"spec": {...}}) or a bare specification
// document, returning the raw document for re-normalization.
package manifest
