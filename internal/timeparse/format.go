package timeparse

import (
	"math"
	"time"
)

// FormatHuman renders an instant the way it would be spoken, relative to now:
// "today at 03:00 PM", "tomorrow at 09:00 AM", "Friday at 01:00 PM", or the
// full "Friday, March 15 at 01:00 PM" beyond a week out.
func FormatHuman(t, now time.Time) string {
	clock := t.Format("03:04 PM")
	switch d := daysBetween(now, t); {
	case d == 0:
		return "today at " + clock
	case d == 1:
		return "tomorrow at " + clock
	case d > 0 && d <= 7:
		return t.Format("Monday") + " at " + clock
	default:
		return t.Format("Monday, January 02 at 03:04 PM")
	}
}

// daysBetween counts calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(math.Round(bd.Sub(ad).Hours() / 24))
}
