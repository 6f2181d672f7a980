// Package timeutil handles timestamp parsing and normalisation.
// The wiki API reports page versions as ISO-8601 strings; some instances
// omit the zone offset, in which case the instant is taken as UTC.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for version timestamps, tried in order.
// time.Parse treats the zoneless layouts as UTC, which matches the
// naive-means-UTC convention of the source API.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse converts an ISO-8601 timestamp string to a timezone-aware time.
// Timestamps without an offset are assumed UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timeutil: empty timestamp")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("timeutil: unrecognised timestamp %q", s)
}

// EnsureUTC normalises a time to UTC for comparison purposes.
func EnsureUTC(t time.Time) time.Time {
	return t.UTC()
}
