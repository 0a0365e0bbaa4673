package textutil

import (
	"strings"
	"time"
)

// isoLayouts covers the timestamp shapes Canvas emits: with an explicit
// offset, without one (assumed UTC), and with or without fractional seconds.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISOTime parses an ISO-8601 timestamp into the target location.
// A trailing "Z" is an explicit zero offset; a timestamp with no
// designator at all is assumed to be UTC. Returns nil when the input is
// empty or does not parse; normalization is always best-effort.
func ParseISOTime(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		t = t.In(loc)
		return &t
	}
	return nil
}

// FormatDueLong renders a due instant the way it is embedded in AI prompts,
// e.g. "Monday, Sep 01, 2025 at 08:30 AM EDT".
func FormatDueLong(t time.Time) string {
	return t.Format("Monday, Jan 02, 2006 at 03:04 PM MST")
}

// FormatClock renders a lower-cased time of day without a leading zero on
// the hour, e.g. "8:30am".
func FormatClock(t time.Time) string {
	return strings.ToLower(t.Format("3:04PM"))
}
