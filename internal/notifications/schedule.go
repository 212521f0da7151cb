package notifications

import "time"

// NextReminderAt returns start + k*interval for the smallest k >= 0
// such that the result is at or after max(now, start). All instants are
// treated as UTC.
func NextReminderAt(start time.Time, days int, now time.Time) time.Time {
	return nextAt(start, days, now, false)
}

// AdvanceReminderAt is the post-send variant: the result is strictly
// after now, which jumps past every missed interval boundary in one
// step (coalescing).
func AdvanceReminderAt(start time.Time, days int, now time.Time) time.Time {
	return nextAt(start, days, now, true)
}

func nextAt(start time.Time, days int, now time.Time, strictlyAfter bool) time.Time {
	if days < 1 {
		days = 1
	}
	start = start.UTC()
	now = now.UTC()
	interval := time.Duration(days) * 24 * time.Hour

	if now.Before(start) {
		return start
	}

	k := now.Sub(start) / interval
	candidate := start.Add(k * interval)
	if candidate.Before(now) || (strictlyAfter && !candidate.After(now)) {
		candidate = candidate.Add(interval)
	}
	return candidate
}
