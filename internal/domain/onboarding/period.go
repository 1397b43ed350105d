package onboarding

import "time"

// PayrollPeriodMarker returns the last calendar day of the month containing
// signed, in UTC.
func PayrollPeriodMarker(signed time.Time) time.Time {
	year, month, _ := signed.UTC().Date()
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// DayRange returns [00:00:00.000, 23:59:59.999] UTC of the marker's day.
func DayRange(marker time.Time) (time.Time, time.Time) {
	year, month, day := marker.UTC().Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Millisecond)
}
