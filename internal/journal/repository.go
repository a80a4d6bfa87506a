package journal

import "time"

// Repository defines persistence operations for the per-user event log.
type Repository interface {
	// Append records a new unanalyzed event owned by the user.
	Append(event *Event) error

	// ListUnanalyzed returns the user's unanalyzed events created inside
	// [from, to), ordered by creation time.
	ListUnanalyzed(userID int64, from, to time.Time) ([]*Event, error)

	// SaveAnalysis attaches reflection text to an event and flips its
	// analyzed flag. It only applies to not-yet-analyzed events so the
	// flip happens exactly once.
	SaveAnalysis(eventID int64, analysis string) error

	// Count returns the total number of logged events.
	Count() (int64, error)
}
