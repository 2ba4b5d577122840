// Package timecode converts screenshot times into the HH:MM:SS.mmm form that
// ffmpeg accepts for -ss.
//
// A time arrives either as a timecode string or as a non-negative second
// count. Format is pure and deterministic: numeric values are rounded to the
// nearest millisecond (half away from zero) and rendered with two-digit
// hour/minute/second fields and a three-digit millisecond field; strings pass
// through untouched. Canonicalize and ParseMillis let callers validate and
// rewrite loosely formatted strings before they reach the external tool.
package timecode
