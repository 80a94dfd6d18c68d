package vitals

import (
	"math"
	"time"
)

// NextStreak returns the logging streak after a log at now.
// Logging twice on one calendar day keeps the streak, logging on the next day
// extends it and any longer gap restarts it at 1. Days are compared in now's
// location.
func NextStreak(last time.Time, current int, now time.Time) int {
	if last.IsZero() {
		return 1
	}

	days := calendarDaysBetween(last.In(now.Location()), now)
	switch {
	case days <= 0:
		if current < 1 {
			return 1
		}
		return current
	case days == 1:
		return current + 1
	default:
		return 1
	}
}

func calendarDaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, to.Location())
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	// Round so a DST shift of one hour does not lose a day
	return int(math.Round(b.Sub(a).Hours() / 24))
}
