// Package language resolves the language a manual is written in. Callers
// pass whatever the user typed (ISO 639 codes, BCP 47 tags, or English
// words) and get back the English display name used in LLM prompts.
package language
