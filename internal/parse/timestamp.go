package parse

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. RFC3339Nano subsumes RFC3339 but both
// are listed so the common case fails fast.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp normalizes the timestamp representations found across the
// three source formats: RFC3339 with or without fractional seconds, ISO-8601
// with a trailing Z or without a zone, and numeric epoch seconds. A false
// return means "timestamp unknown" and is distinct from epoch zero; callers
// must not store the zero time as if it were a real timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Epoch seconds, possibly fractional.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return TimeFromUnix(f), true
	}

	return time.Time{}, false
}

// TimeFromUnix converts fractional epoch seconds (the ChatGPT export
// representation) to a time. Zero and negative values mean unknown.
func TimeFromUnix(sec float64) time.Time {
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// UnixFloat is the inverse of TimeFromUnix, with millisecond precision.
// The zero time maps to 0, which export sites treat as "absent".
func UnixFloat(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixMilli()) / 1000
}
