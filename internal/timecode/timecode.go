package timecode

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"movie2manual/internal/services"
)

var (
	canonicalPattern = regexp.MustCompile(`^(\d{2,}):([0-5]\d):([0-5]\d)\.(\d{3})$`)
	loosePattern     = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})(?:\.(\d{1,9}))?$`)
	secondsPattern   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// MaxSeconds bounds numeric times: counts at or above it overflow an int64 millisecond total.
const MaxSeconds = float64(math.MaxInt64) / 1000

// Value is a screenshot time exactly as supplied: a timecode string or a
// second count. The zero value is the numeric time 0.
type Value struct {
	text    string
	seconds float64
	numeric bool
	set     bool
}

// Seconds builds a numeric time value.
func Seconds(seconds float64) Value {
	return Value{seconds: seconds, numeric: true, set: true}
}

// Text builds a string time value.
func Text(text string) Value {
	return Value{text: text, set: true}
}

// IsNumeric reports whether the value was supplied as a second count.
func (v Value) IsNumeric() bool {
	return v.numeric || !v.set
}

// SecondsValue returns the numeric second count; it is only meaningful when
// IsNumeric is true.
func (v Value) SecondsValue() float64 {
	return v.seconds
}

// TextValue returns the string form; it is only meaningful when IsNumeric is
// false.
func (v Value) TextValue() string {
	return v.text
}

// String renders the raw value without canonicalizing it.
func (v Value) String() string {
	if v.IsNumeric() {
		return strconv.FormatFloat(v.seconds, 'f', -1, 64)
	}
	return v.text
}

// MarshalJSON keeps the original shape: numbers stay numbers, strings stay strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNumeric() {
		if math.IsNaN(v.seconds) || math.IsInf(v.seconds, 0) {
			return nil, fmt.Errorf("timecode: cannot encode %v", v.seconds)
		}
		return []byte(strconv.FormatFloat(v.seconds, 'f', -1, 64)), nil
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON value into a Value. Strings and numbers are
// accepted; anything else is a format failure.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case string:
		return Text(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, services.Wrap(services.ErrFormat, "timecode", "decode", fmt.Sprintf("invalid number %q", val.String()), err)
		}
		return Seconds(f), nil
	case float64:
		return Seconds(val), nil
	case float32:
		return Seconds(float64(val)), nil
	case int:
		return Seconds(float64(val)), nil
	case int64:
		return Seconds(float64(val)), nil
	default:
		return Value{}, services.Wrap(services.ErrFormat, "timecode", "decode", fmt.Sprintf("unsupported time type %T", raw), nil)
	}
}

// Format renders v as HH:MM:SS.mmm. String values are returned unchanged.
func Format(v Value) (string, error) {
	if !v.IsNumeric() {
		return v.text, nil
	}
	return FormatSeconds(v.seconds)
}

// FormatAny formats a decoded JSON value (string or number).
func FormatAny(raw any) (string, error) {
	v, err := FromAny(raw)
	if err != nil {
		return "", err
	}
	return Format(v)
}

// InRange reports whether seconds is a finite, non-negative count below MaxSeconds.
func InRange(seconds float64) bool {
	return !math.IsNaN(seconds) && seconds >= 0 && seconds < MaxSeconds
}

// FormatSeconds renders a non-negative second count as HH:MM:SS.mmm.
func FormatSeconds(seconds float64) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "", services.Wrap(services.ErrFormat, "timecode", "format", fmt.Sprintf("invalid seconds %v", seconds), nil)
	}
	if seconds < 0 {
		return "", services.Wrap(services.ErrFormat, "timecode", "format", fmt.Sprintf("negative seconds %v", seconds), nil)
	}
	if !InRange(seconds) {
		return "", services.Wrap(services.ErrFormat, "timecode", "format", fmt.Sprintf("seconds %v out of range", seconds), nil)
	}
	return FormatMillis(int64(math.Round(seconds * 1000))), nil
}

// FormatMillis renders a millisecond count as HH:MM:SS.mmm. Hours grow past
// two digits when needed.
func FormatMillis(totalMs int64) string {
	if totalMs < 0 {
		totalMs = 0
	}
	ms := totalMs % 1000
	totalS := totalMs / 1000
	s := totalS % 60
	totalM := totalS / 60
	m := totalM % 60
	h := totalM / 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// IsCanonical reports whether value already matches HH:MM:SS.mmm.
func IsCanonical(value string) bool {
	return canonicalPattern.MatchString(value)
}

// ParseMillis parses a canonical HH:MM:SS.mmm string into milliseconds.
func ParseMillis(value string) (int64, error) {
	match := canonicalPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, services.Wrap(services.ErrFormat, "timecode", "parse", fmt.Sprintf("%q is not HH:MM:SS.mmm", value), nil)
	}
	h, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrFormat, "timecode", "parse", "hours out of range", err)
	}
	m, _ := strconv.ParseInt(match[2], 10, 64)
	s, _ := strconv.ParseInt(match[3], 10, 64)
	ms, _ := strconv.ParseInt(match[4], 10, 64)
	return ((h*60+m)*60+s)*1000 + ms, nil
}

// Canonicalize rewrites a loosely formatted timecode into HH:MM:SS.mmm.
// Accepted inputs are [H:]MM:SS[.fraction] and plain decimal seconds.
// Fractions longer than three digits are rounded to the nearest millisecond.
func Canonicalize(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if IsCanonical(trimmed) {
		return trimmed, nil
	}
	if secondsPattern.MatchString(trimmed) {
		seconds, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return "", services.Wrap(services.ErrFormat, "timecode", "canonicalize", fmt.Sprintf("invalid seconds %q", value), err)
		}
		return FormatSeconds(seconds)
	}
	match := loosePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", services.Wrap(services.ErrFormat, "timecode", "canonicalize", fmt.Sprintf("unrecognized timecode %q", value), nil)
	}
	var h int64
	if match[1] != "" {
		parsed, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return "", services.Wrap(services.ErrFormat, "timecode", "canonicalize", "hours out of range", err)
		}
		h = parsed
	}
	m, _ := strconv.ParseInt(match[2], 10, 64)
	s, _ := strconv.ParseInt(match[3], 10, 64)
	if m >= 60 || s >= 60 {
		return "", services.Wrap(services.ErrFormat, "timecode", "canonicalize", fmt.Sprintf("minutes and seconds must be below 60 in %q", value), nil)
	}
	total := ((h*60+m)*60 + s) * 1000
	total += fractionMillis(match[4])
	return FormatMillis(total), nil
}

// fractionMillis converts the digits after the decimal point into a rounded
// millisecond count.
func fractionMillis(frac string) int64 {
	if frac == "" {
		return 0
	}
	padded := frac + "0000"
	ms, _ := strconv.ParseInt(padded[:3], 10, 64)
	if padded[3] >= '5' {
		ms++
	}
	return ms
}
