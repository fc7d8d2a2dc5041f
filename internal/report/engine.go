package report

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const (
	TrailingMonths   = 6
	TopCategoryCount = 5
)

// totals accumulates amounts by category kind.
type totals struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

func (t *totals) add(tx *transaction.Transaction) {
	switch tx.CategoryKind {
	case category.KindIncome:
		t.income = t.income.Add(tx.Amount)
	case category.KindExpense:
		t.expense = t.expense.Add(tx.Amount)
	}
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) compare(o monthKey) int {
	if c := cmp.Compare(k.year, o.year); c != 0 {
		return c
	}

	return cmp.Compare(k.month, o.month)
}

func validMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return apperr.Validation("month", "must be between 1 and 12, got %d", month)
	}

	return nil
}

// SummarizeMonth totals the owner's transactions dated inside the half-open
// window [first day of month, first day of next month).
func SummarizeMonth(ledger []*transaction.Transaction, owner uuid.UUID, year int, month time.Month) (MonthlySummary, error) {
	if err := validMonth(month); err != nil {
		return MonthlySummary{}, err
	}

	start, next := calendar.MonthWindow(year, month)

	var t totals

	for _, tx := range ledger {
		d := calendar.Day(tx.Date)
		if tx.OwnerID != owner || d.Before(start) || !d.Before(next) {
			continue
		}

		t.add(tx)
	}

	return newMonthlySummary(year, month, t.income, t.expense), nil
}

// RollupByCategory groups the owner's transactions dated inside the closed
// window [start, end] by category. Bounds are reduced to calendar dates.
// Categories without transactions in the window are omitted. Rows keep the
// order in which their category first appears in the ledger. An inverted
// window yields no rows.
func RollupByCategory(ledger []*transaction.Transaction, owner uuid.UUID, start, end time.Time) []CategoryReport {
	start, end = calendar.Day(start), calendar.Day(end)

	if start.After(end) {
		return []CategoryReport{}
	}

	index := make(map[uuid.UUID]int)
	reports := []CategoryReport{}

	for _, tx := range ledger {
		if tx.OwnerID != owner || !calendar.Within(tx.Date, start, end) {
			continue
		}

		i, ok := index[tx.CategoryID]
		if !ok {
			i = len(reports)
			index[tx.CategoryID] = i
			reports = append(reports, CategoryReport{
				CategoryID:   tx.CategoryID,
				CategoryName: tx.CategoryName,
				CategoryKind: tx.CategoryKind,
			})
		}

		reports[i].TotalAmount = reports[i].TotalAmount.Add(tx.Amount)
		reports[i].TransactionCount++
	}

	return reports
}

// BreakdownByMonth emits one summary per calendar month that has at least one
// of the owner's transactions inside [start, end], oldest first. Amounts
// outside the window never leak into a month that straddles its edge.
func BreakdownByMonth(ledger []*transaction.Transaction, owner uuid.UUID, start, end time.Time) []MonthlySummary {
	start, end = calendar.Day(start), calendar.Day(end)

	if start.After(end) {
		return []MonthlySummary{}
	}

	byMonth := make(map[monthKey]*totals)

	for _, tx := range ledger {
		if tx.OwnerID != owner || !calendar.Within(tx.Date, start, end) {
			continue
		}

		d := calendar.Day(tx.Date)
		k := monthKey{year: d.Year(), month: d.Month()}

		t, ok := byMonth[k]
		if !ok {
			t = &totals{}
			byMonth[k] = t
		}

		t.add(tx)
	}

	keys := make([]monthKey, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, monthKey.compare)

	summaries := make([]MonthlySummary, 0, len(keys))
	for _, k := range keys {
		t := byMonth[k]
		summaries = append(summaries, newMonthlySummary(k.year, k.month, t.income, t.expense))
	}

	return summaries
}

// CompareTrailingMonths returns exactly n entries for the n calendar months
// ending with the month of today, oldest first. Months without transactions
// are zero-filled.
func CompareTrailingMonths(ledger []*transaction.Transaction, owner uuid.UUID, today time.Time, n int) []MonthComparison {
	if n <= 0 {
		return []MonthComparison{}
	}

	firstYear, firstMonth := calendar.AddMonths(today.Year(), today.Month(), -(n - 1))
	first := monthKey{year: firstYear, month: firstMonth}

	out := make([]MonthComparison, n)
	for i := range out {
		y, m := calendar.AddMonths(firstYear, firstMonth, i)
		out[i] = MonthComparison{Label: MonthLabel(y, m), Year: y, Month: m}
	}

	for _, tx := range ledger {
		if tx.OwnerID != owner {
			continue
		}

		d := calendar.Day(tx.Date)

		i := monthsBetween(first, monthKey{year: d.Year(), month: d.Month()})
		if i < 0 || i >= n {
			continue
		}

		switch tx.CategoryKind {
		case category.KindIncome:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case category.KindExpense:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}

	return out
}

func monthsBetween(from, to monthKey) int {
	return (to.year-from.year)*12 + int(to.month) - int(from.month)
}

// MonthLabel renders a month as a short English label such as "Jan 2024".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%.3s %d", month, year)
}

// TopCategories returns the n largest rollups by total amount. Equal totals
// keep their input order.
func TopCategories(reports []CategoryReport, n int) []CategoryReport {
	sorted := slices.Clone(reports)
	slices.SortStableFunc(sorted, func(a, b CategoryReport) int {
		return b.TotalAmount.Cmp(a.TotalAmount)
	})

	if n < 0 {
		n = 0
	}

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}

// Summarize totals category rollups by kind.
func Summarize(categories []CategoryReport) Summary {
	var income, expense decimal.Decimal

	for _, c := range categories {
		switch c.CategoryKind {
		case category.KindIncome:
			income = income.Add(c.TotalAmount)
		case category.KindExpense:
			expense = expense.Add(c.TotalAmount)
		}
	}

	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}

// BuildReport assembles a FinancialReport for [start, end]. Unlike the
// individual aggregations it rejects an inverted range.
func BuildReport(ledger []*transaction.Transaction, owner uuid.UUID, start, end time.Time, periodType PeriodType) (*FinancialReport, error) {
	start, end = calendar.Day(start), calendar.Day(end)

	if start.After(end) {
		return nil, ErrInvalidRange
	}

	categories := RollupByCategory(ledger, owner, start, end)

	return &FinancialReport{
		Period: Period{
			StartDate: start,
			EndDate:   end,
			Type:      ParsePeriodType(string(periodType)),
		},
		Summary:          Summarize(categories),
		Categories:       categories,
		MonthlyBreakdown: BreakdownByMonth(ledger, owner, start, end),
	}, nil
}

// BuildDashboard composes the current month's summary, the trailing-month
// comparison and the top categories of the current month. recent is passed
// through untouched.
func BuildDashboard(ledger, recent []*transaction.Transaction, owner uuid.UUID, today time.Time) (*DashboardData, error) {
	current, err := SummarizeMonth(ledger, owner, today.Year(), today.Month())
	if err != nil {
		return nil, err
	}

	if recent == nil {
		recent = []*transaction.Transaction{}
	}

	monthStart := calendar.MonthStart(today.Year(), today.Month())
	monthEnd := calendar.MonthEnd(today.Year(), today.Month())

	return &DashboardData{
		CurrentMonthSummary: current,
		RecentTransactions:  recent,
		MonthlyComparison:   CompareTrailingMonths(ledger, owner, today, TrailingMonths),
		TopCategories:       TopCategories(RollupByCategory(ledger, owner, monthStart, monthEnd), TopCategoryCount),
	}, nil
}
