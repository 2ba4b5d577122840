// Package config loads, normalizes, and validates movie2manual configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as
// MOVIE2MANUAL_LLM_API_KEY. The Config type gathers every knob the CLI and the
// pipeline need so they receive one resolved value instead of reading process
// state themselves.
package config
