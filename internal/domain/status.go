package domain

import "time"

// DateOnly truncates t to a calendar date in UTC. Trip status derivation
// compares calendar dates, never times of day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DeriveStatus computes a trip's lifecycle status from its date range and
// the current time. Cancellation is terminal: a cancelled trip is never
// revived by derivation. All other statuses are recomputed from scratch,
// so the function is idempotent for a fixed now.
func DeriveStatus(current TripStatus, start, end, now time.Time) TripStatus {
	if current == TripStatusCancelled {
		return TripStatusCancelled
	}
	today := DateOnly(now)
	s, e := DateOnly(start), DateOnly(end)
	switch {
	case e.Before(today):
		return TripStatusCompleted
	case !s.After(today):
		return TripStatusOngoing
	default:
		return TripStatusUpcoming
	}
}
