package common

import "time"

// Date layout used for calendar-day idempotency keys (last clean day,
// last check-in day). Days are compared in the user's own local calendar.
const DateLayout = "2006-01-02"

// ClockLayout is the "HH:MM" layout used for review times and the sweep match.
const ClockLayout = "15:04"

// LocalNow converts an instant to a user's local time by applying the stored
// whole-hour UTC offset. Users without an offset never reach this path.
func LocalNow(now time.Time, offsetHours int) time.Time {
	return now.UTC().Add(time.Duration(offsetHours) * time.Hour)
}

// DateString formats t as a calendar-day key.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockString formats t's time of day as "HH:MM".
func ClockString(t time.Time) string {
	return t.Format(ClockLayout)
}

// LocalDayWindow returns the UTC instants bounding the user's current
// local calendar day: [from, to). Store timestamps are UTC, so "today's
// events" queries filter on this window.
func LocalDayWindow(now time.Time, offsetHours int) (from, to time.Time) {
	local := LocalNow(now, offsetHours)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	from = dayStart.Add(-time.Duration(offsetHours) * time.Hour)
	return from, from.Add(24 * time.Hour)
}

// SameDate reports whether two instants fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateString(a) == DateString(b)
}
