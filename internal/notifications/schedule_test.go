package notifications

import (
	"testing"
	"time"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextReminderAtBeforeStart(t *testing.T) {
	start := ts("2025-03-01T00:00:00Z")
	now := ts("2025-02-20T12:00:00Z")
	if got := NextReminderAt(start, 7, now); !got.Equal(start) {
		t.Fatalf("expected start, got %s", got)
	}
}

func TestNextReminderAtOnBoundary(t *testing.T) {
	start := ts("2025-01-01T00:00:00Z")
	now := ts("2025-01-08T00:00:00Z")

	// At-or-after keeps the boundary instant.
	if got := NextReminderAt(start, 7, now); !got.Equal(now) {
		t.Fatalf("expected boundary to hold, got %s", got)
	}
	// Strictly-after jumps one interval.
	if got := AdvanceReminderAt(start, 7, now); !got.Equal(ts("2025-01-15T00:00:00Z")) {
		t.Fatalf("expected next boundary, got %s", got)
	}
}

func TestAdvanceReminderAtCoalescesMissedIntervals(t *testing.T) {
	// Scheduler down for four days: one step lands strictly after now.
	start := ts("2025-01-01T00:00:00Z")
	now := ts("2025-01-05T12:00:00Z")

	got := AdvanceReminderAt(start, 1, now)
	if !got.Equal(ts("2025-01-06T00:00:00Z")) {
		t.Fatalf("expected 2025-01-06T00:00:00Z, got %s", got)
	}
	if !got.After(now) {
		t.Fatal("advanced value must be strictly after now")
	}
}

func TestNextReminderAtMultiDayInterval(t *testing.T) {
	start := ts("2025-01-01T00:00:00Z")
	now := ts("2025-01-10T08:00:00Z")

	if got := NextReminderAt(start, 7, now); !got.Equal(ts("2025-01-15T00:00:00Z")) {
		t.Fatalf("expected 2025-01-15, got %s", got)
	}
}

func TestNextReminderAtGuardsInterval(t *testing.T) {
	start := ts("2025-01-01T00:00:00Z")
	now := ts("2025-01-02T06:00:00Z")

	// Zero or negative day counts are clamped to one day.
	if got := NextReminderAt(start, 0, now); !got.Equal(ts("2025-01-03T00:00:00Z")) {
		t.Fatalf("expected clamped daily interval, got %s", got)
	}
}

func TestNextReminderAtNaiveInputTreatedAsUTC(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	start := time.Date(2025, 1, 1, 5, 0, 0, 0, loc) // 00:00 UTC
	now := ts("2025-01-03T12:00:00Z")

	if got := NextReminderAt(start, 1, now); !got.Equal(ts("2025-01-04T00:00:00Z")) {
		t.Fatalf("expected UTC normalization, got %s", got)
	}
}
