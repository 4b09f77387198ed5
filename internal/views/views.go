// Package views derives read-only presentations from the entry collection:
// period distributions, the month-by-month archive and relative timestamps.
// Calendar math happens in the caller's location.
package views

import "time"

// civilDay truncates t to midnight in loc, expressed as a UTC date for day arithmetic.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b in loc.
func daysBetween(a, b time.Time, loc *time.Location) int {
	return int(civilDay(b, loc).Sub(civilDay(a, loc)).Hours() / 24)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
