package report

import (
	"time"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
)

const (
	PresetThisMonth   = "this_month"
	PresetLastMonth   = "last_month"
	PresetThisQuarter = "this_quarter"
	PresetThisYear    = "this_year"
)

// Preset resolves a named range relative to today. Ranges run up to today,
// except last_month which covers the whole previous month.
func Preset(name string, today time.Time) (ReportParams, error) {
	today = calendar.Day(today)
	y, m := today.Year(), today.Month()

	switch name {
	case PresetThisMonth:
		return ReportParams{Start: calendar.MonthStart(y, m), End: today, PeriodType: PeriodMonthly}, nil
	case PresetLastMonth:
		py, pm := calendar.AddMonths(y, m, -1)
		return ReportParams{Start: calendar.MonthStart(py, pm), End: calendar.MonthEnd(py, pm), PeriodType: PeriodMonthly}, nil
	case PresetThisQuarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return ReportParams{Start: calendar.MonthStart(y, first), End: today, PeriodType: PeriodQuarterly}, nil
	case PresetThisYear:
		return ReportParams{Start: calendar.MonthStart(y, time.January), End: today, PeriodType: PeriodYearly}, nil
	default:
		return ReportParams{}, apperr.Validation("preset", "unknown preset %q", name)
	}
}
