package core

import (
	"fmt"
	"time"
)

// Calendar arithmetic shared by the aggregation and bucketing layers.
// All boundaries are computed in the timezone of the input instant.

// DayOf discards the time of day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last representable instant of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// PreviousMonthStart returns midnight on the first day of the month
// before t's, rolling across year boundaries.
func PreviousMonthStart(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, -1, 0)
}

// StartOfYear returns midnight on January 1 of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// MonthsBack returns midnight on the first day of the month n months
// before t's month. MonthsBack(March, 2) is January 1 of the same year;
// crossing January rolls the year.
func MonthsBack(t time.Time, n int) time.Time {
	return StartOfMonth(t).AddDate(0, -n, 0)
}

// ISOWeekStart returns the Monday that starts the ISO week containing t,
// at midnight. A Monday maps to itself.
func ISOWeekStart(t time.Time) time.Time {
	d := DayOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// DayLabel formats a daily bucket key.
func DayLabel(t time.Time) string {
	return t.Format("2006-01-02")
}

// ISOWeekLabel formats a weekly bucket key using the ISO week-numbering
// year, which can differ from the calendar year near January 1.
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthLabel formats a monthly bucket key.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}
