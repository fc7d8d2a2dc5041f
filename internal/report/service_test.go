package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

func TestService_MonthlySummary(t *testing.T) {
	type args struct {
		year  int
		month time.Month
	}

	type testCase struct {
		name        string
		args        args
		setupMock   func(m *report.MockLedger)
		wantBalance string
		wantErr     error
	}

	start, end := date("2024-02-01"), date("2024-02-29")

	tests := []testCase{
		{
			name: "Success",
			args: args{year: 2024, month: time.February},
			setupMock: func(m *report.MockLedger) {
				m.EXPECT().
					List(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}).
					Return(exampleLedger()[2:], nil)
			},
			wantBalance: "3800000",
		},
		{
			name:    "InvalidMonth",
			args:    args{year: 2024, month: 13},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "StoreUnavailable",
			args: args{year: 2024, month: time.February},
			setupMock: func(m *report.MockLedger) {
				m.EXPECT().List(gomock.Any(), owner, gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ledger := report.NewMockLedger(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(ledger)
			}

			got, err := report.NewService(ledger).MonthlySummary(context.Background(), owner, tt.args.year, tt.args.month)

			if tt.wantErr != nil {
				assert.Error(t, err)

				if errors.Is(tt.wantErr, apperr.ErrValidation) {
					assert.ErrorIs(t, err, apperr.ErrValidation)
				}

				return
			}

			require.NoError(t, err)
			assertDecimal(t, tt.wantBalance, got.Balance)
		})
	}
}

func TestService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := report.NewMockLedger(ctrl)

	now := time.Date(2024, 2, 21, 23, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	start, end := date("2023-09-01"), date("2024-02-29")
	recent := exampleLedger()[:1]

	ledger.EXPECT().
		Snapshot(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}, transaction.DefaultRecentLimit).
		Return(&transaction.Snapshot{Window: exampleLedger(), Recent: recent}, nil)

	got, err := report.NewService(ledger).Dashboard(context.Background(), owner, now)
	require.NoError(t, err)

	assert.Equal(t, 2024, got.CurrentMonthSummary.Year)
	assert.Equal(t, time.February, got.CurrentMonthSummary.Month)
	assertDecimal(t, "3800000", got.CurrentMonthSummary.Balance)
	assert.Equal(t, recent, got.RecentTransactions)
	assert.Len(t, got.MonthlyComparison, 6)
	require.Len(t, got.TopCategories, 2)
	assert.Equal(t, "Salary", got.TopCategories[0].CategoryName)
}

func TestService_Dashboard_FailsAtomically(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := report.NewMockLedger(ctrl)
	ledger.EXPECT().Snapshot(gomock.Any(), owner, gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	got, err := report.NewService(ledger).Dashboard(context.Background(), owner, time.Now())
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestService_Report(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := report.NewMockLedger(ctrl)
		start, end := date("2024-01-01"), date("2024-03-31")

		ledger.EXPECT().
			List(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}).
			Return(exampleLedger(), nil)

		got, err := report.NewService(ledger).Report(context.Background(), owner, report.ReportParams{
			Start:      start,
			End:        end,
			PeriodType: report.PeriodQuarterly,
		})
		require.NoError(t, err)
		assert.Equal(t, report.PeriodQuarterly, got.Period.Type)
		assert.Equal(t, start, got.Period.StartDate)
		assert.Equal(t, end, got.Period.EndDate)
		assertDecimal(t, "7300000", got.Summary.Balance)
		assert.Len(t, got.Categories, 2)
		assert.Len(t, got.MonthlyBreakdown, 2)
	})

	t.Run("InvalidRangeSkipsLedger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, err := report.NewService(report.NewMockLedger(ctrl)).Report(context.Background(), owner, report.ReportParams{
			Start: date("2024-02-01"),
			End:   date("2024-01-31"),
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidRange)
	})

	t.Run("SingleDay", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := report.NewMockLedger(ctrl)
		ledger.EXPECT().List(gomock.Any(), owner, gomock.Any()).Return(nil, nil)

		got, err := report.NewService(ledger).Report(context.Background(), owner, report.ReportParams{
			Start: date("2024-02-01"),
			End:   date("2024-02-01"),
		})
		require.NoError(t, err)
		assert.Equal(t, report.PeriodCustom, got.Period.Type)
		assert.Empty(t, got.Categories)
		assert.Empty(t, got.MonthlyBreakdown)
		assert.True(t, got.Summary.Balance.IsZero())
	})
}
