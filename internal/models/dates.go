package models

import "time"

// DayLayout is the calendar-day format used for check-ins and due dates.
const DayLayout = "2006-01-02"

// Day formats t as a calendar day string.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last second of t's calendar day. Due dates are
// date-only, so deadlines are measured from end of day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// ParseDay parses a YYYY-MM-DD calendar day string.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}
