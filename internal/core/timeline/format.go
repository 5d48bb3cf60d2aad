package timeline

import (
	"fmt"
	"math"
	"time"
)

// elapsedDays counts whole 24-hour periods from t to ref, negative when t is after ref
func elapsedDays(t, ref time.Time) int {
	return int(math.Floor(ref.Sub(t).Hours() / 24))
}

// RelativeDate renders t relative to ref: "Today", "Yesterday", "3 days ago",
// then a short date such as "2 Jan", with the year only when it differs from ref's.
// Days are elapsed 24-hour periods, so 2 hours before ref is "Today" even across midnight.
func RelativeDate(t, ref time.Time) string {
	days := elapsedDays(t, ref)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days >= 2 && days <= 6:
		return fmt.Sprintf("%d days ago", days)
	}

	t = t.In(ref.Location())
	if t.Year() != ref.Year() {
		return t.Format("2 Jan 2006")
	}
	return t.Format("2 Jan")
}

// ClockTime renders the time of day, e.g. "03:04 pm"
func ClockTime(t time.Time) string {
	return t.Format("03:04 pm")
}
