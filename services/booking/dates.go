package booking

import "time"

// AddMonths adds months to t. When the target month is too short to hold t's day, the
// result rolls to the first day of the following month, so Jan 31 + 1 month is Mar 1.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if d <= last {
		return first.AddDate(0, 0, d-1)
	}
	return first.AddDate(0, 0, last)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
