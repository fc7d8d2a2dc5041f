package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=report
type Ledger interface {
	// List returns the owner's transactions inside the inclusive filter dates,
	// each joined with its category name and kind.
	List(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	// Snapshot returns List(filter) together with the most recently created
	// transactions, both read from one consistent view of the ledger.
	Snapshot(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter, limit int) (*transaction.Snapshot, error)
}

// Service reads a consistent slice of the ledger per call and hands it to
// the pure aggregation functions in this package.
type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

type ReportParams struct {
	Start      time.Time
	End        time.Time
	PeriodType PeriodType
}

func (s *Service) MonthlySummary(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) (MonthlySummary, error) {
	if err := validMonth(month); err != nil {
		return MonthlySummary{}, err
	}

	start := calendar.MonthStart(year, month)
	end := calendar.MonthEnd(year, month)

	txs, err := s.ledger.List(ctx, ownerID, transaction.ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("loading month: %w", err)
	}

	return SummarizeMonth(txs, ownerID, year, month)
}

// Dashboard builds the overview for the calendar day of now. The caller is
// responsible for expressing now in the owner's timezone.
func (s *Service) Dashboard(ctx context.Context, ownerID uuid.UUID, now time.Time) (*DashboardData, error) {
	today := calendar.Day(now)

	firstYear, firstMonth := calendar.AddMonths(today.Year(), today.Month(), -(TrailingMonths - 1))
	start := calendar.MonthStart(firstYear, firstMonth)
	end := calendar.MonthEnd(today.Year(), today.Month())

	snap, err := s.ledger.Snapshot(ctx, ownerID, transaction.ListFilter{StartDate: &start, EndDate: &end}, transaction.DefaultRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}

	return BuildDashboard(snap.Window, snap.Recent, ownerID, today)
}

func (s *Service) Report(ctx context.Context, ownerID uuid.UUID, params ReportParams) (*FinancialReport, error) {
	start := calendar.Day(params.Start)
	end := calendar.Day(params.End)

	if start.After(end) {
		return nil, ErrInvalidRange
	}

	txs, err := s.ledger.List(ctx, ownerID, transaction.ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("loading report window: %w", err)
	}

	return BuildReport(txs, ownerID, start, end, params.PeriodType)
}
