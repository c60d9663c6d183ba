package util

import "time"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysFrom returns midnight n days after t.
func DaysFrom(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}
