package textutil

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestParseISOTimeZEqualsExplicitOffset(t *testing.T) {
	loc := mustLoc(t, "America/New_York")

	a := ParseISOTime("2025-03-14T09:26:53Z", loc)
	b := ParseISOTime("2025-03-14T09:26:53+00:00", loc)
	if a == nil || b == nil {
		t.Fatalf("expected both forms to parse, got %v / %v", a, b)
	}
	if !a.Equal(*b) {
		t.Errorf("Z suffix parsed to %v, +00:00 to %v", a, b)
	}
}

func TestParseISOTimeNaiveAssumesUTC(t *testing.T) {
	loc := mustLoc(t, "America/New_York")

	got := ParseISOTime("2025-01-15T12:00:00", loc)
	if got == nil {
		t.Fatal("expected naive timestamp to parse")
	}
	// Noon UTC is 7am Eastern in January.
	if got.Hour() != 7 {
		t.Errorf("got hour %d in %s, want 7", got.Hour(), loc)
	}
	if got.Location() != loc {
		t.Errorf("got location %v, want %v", got.Location(), loc)
	}
}

func TestParseISOTimeConvertsOffsetToTarget(t *testing.T) {
	loc := mustLoc(t, "America/New_York")

	got := ParseISOTime("2025-06-01T18:30:00+02:00", loc)
	if got == nil {
		t.Fatal("expected offset timestamp to parse")
	}
	want := time.Date(2025, 6, 1, 12, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseISOTimeBadInput(t *testing.T) {
	loc := mustLoc(t, "UTC")
	for _, s := range []string{"", "  ", "not-a-date", "14/03/2025"} {
		if got := ParseISOTime(s, loc); got != nil {
			t.Errorf("ParseISOTime(%q) = %v, want nil", s, got)
		}
	}
}

func TestFormatClock(t *testing.T) {
	loc := mustLoc(t, "UTC")
	tm := time.Date(2025, 9, 1, 8, 5, 0, 0, loc)
	if got := FormatClock(tm); got != "8:05am" {
		t.Errorf("FormatClock = %q, want 8:05am", got)
	}
	tm = time.Date(2025, 9, 1, 23, 59, 0, 0, loc)
	if got := FormatClock(tm); got != "11:59pm" {
		t.Errorf("FormatClock = %q, want 11:59pm", got)
	}
}
