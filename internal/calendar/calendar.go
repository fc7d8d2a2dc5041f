// Package calendar handles day-granular dates.
//
// Ledger dates carry no time-of-day: every value produced here is midnight
// UTC so that comparisons and month arithmetic never shift a day because of
// a local timezone.
package calendar

import (
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
)

// Parse reads a YYYY-MM-DD string into a calendar date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validation("date", "expected YYYY-MM-DD, got %q", s)
	}

	return t, nil
}

// Format renders a calendar date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Day reduces t to its calendar date in t's own location.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the given month.
func MonthStart(year int, month time.Month) time.Time {
	return Date(year, month, 1)
}

// MonthWindow returns the half-open interval [first day, first day of next month).
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := MonthStart(year, month)
	return start, start.AddDate(0, 1, 0)
}

// MonthEnd returns the last day of the given month.
func MonthEnd(year int, month time.Month) time.Time {
	return MonthStart(year, month).AddDate(0, 1, -1)
}

// AddMonths moves a (year, month) pair by n months, normalising the year.
func AddMonths(year int, month time.Month, n int) (int, time.Month) {
	t := MonthStart(year, month).AddDate(0, n, 0)
	return t.Year(), t.Month()
}

// Within reports whether the calendar date of d lies in the closed interval
// [start, end]. All three are compared as dates, never as instants.
func Within(d, start, end time.Time) bool {
	d, start, end = Day(d), Day(start), Day(end)
	return !d.Before(start) && !d.After(end)
}
