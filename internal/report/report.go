// Package report aggregates an owner's ledger into monthly summaries,
// category rollups, trailing-month comparisons and date-range reports.
//
// Amounts are stored as positive magnitudes. Every aggregate derives the
// direction of a transaction from its category kind, so income and expense
// totals are never negative and balance is computed here, never stored.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

var ErrInvalidRange = fmt.Errorf("start date is after end date: %w", apperr.ErrInvalidRange)

type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodYearly    PeriodType = "yearly"
	PeriodCustom    PeriodType = "custom"
)

// ParsePeriodType falls back to PeriodCustom for anything it does not recognise.
func ParsePeriodType(s string) PeriodType {
	switch p := PeriodType(s); p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly, PeriodCustom:
		return p
	default:
		return PeriodCustom
	}
}

type MonthlySummary struct {
	Year         int
	Month        time.Month
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	IsOverspent  bool
}

func newMonthlySummary(year int, month time.Month, income, expense decimal.Decimal) MonthlySummary {
	balance := income.Sub(expense)

	return MonthlySummary{
		Year:         year,
		Month:        month,
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      balance,
		IsOverspent:  balance.IsNegative(),
	}
}

type CategoryReport struct {
	CategoryID       uuid.UUID
	CategoryName     string
	CategoryKind     category.Kind
	TotalAmount      decimal.Decimal
	TransactionCount int
}

// MonthComparison is one point of the trailing-month chart. Label reads like "Jan 2024".
type MonthComparison struct {
	Label   string
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type Period struct {
	StartDate time.Time
	EndDate   time.Time
	Type      PeriodType
}

type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

type FinancialReport struct {
	Period           Period
	Summary          Summary
	Categories       []CategoryReport
	MonthlyBreakdown []MonthlySummary
}

type DashboardData struct {
	CurrentMonthSummary MonthlySummary
	RecentTransactions  []*transaction.Transaction
	MonthlyComparison   []MonthComparison
	TopCategories       []CategoryReport
}
