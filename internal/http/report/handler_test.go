package report_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	httpreport "github.com/MrJamesThe3rd/pocketbook/internal/http/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

var (
	owner  = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	salary = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	food   = uuid.MustParse("00000000-0000-0000-0000-0000000000e1")
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return d
}

func ledger() []*transaction.Transaction {
	return []*transaction.Transaction{
		{ID: uuid.New(), OwnerID: owner, CategoryID: salary, CategoryName: "Salary", CategoryKind: category.KindIncome, Amount: decimal.NewFromInt(3000), Date: day("2024-03-01")},
		{ID: uuid.New(), OwnerID: owner, CategoryID: food, CategoryName: "Food", CategoryKind: category.KindExpense, Amount: decimal.NewFromInt(3500), Date: day("2024-03-10")},
	}
}

func serve(t *testing.T, setupMock func(m *report.MockLedger), target string) *httptest.ResponseRecorder {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := report.NewMockLedger(ctrl)

	if setupMock != nil {
		setupMock(m)
	}

	h := httpreport.NewHandler(report.NewService(m), fixedClock)

	r := chi.NewRouter()
	r.Route("/reports", h.Routes)
	r.Route("/dashboard", h.DashboardRoutes)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(auth.WithOwner(req.Context(), owner)))

	return rec
}

func TestHandler_Monthly_DefaultsToCurrentMonth(t *testing.T) {
	start, end := day("2024-03-01"), day("2024-03-31")

	rec := serve(t, func(m *report.MockLedger) {
		m.EXPECT().
			List(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}).
			Return(ledger(), nil)
	}, "/reports/monthly")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "3000.00", body["total_income"])
	assert.Equal(t, "3500.00", body["total_expense"])
	assert.Equal(t, "-500.00", body["balance"])
	assert.Equal(t, true, body["is_overspent"])
}

func TestHandler_Monthly_InvalidMonth(t *testing.T) {
	rec := serve(t, nil, "/reports/monthly?year=2024&month=13")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_Report(t *testing.T) {
	type testCase struct {
		name       string
		target     string
		setupMock  func(m *report.MockLedger)
		wantStatus int
		wantPeriod string
	}

	tests := []testCase{
		{
			name:   "Preset",
			target: "/reports/?preset=this_quarter",
			setupMock: func(m *report.MockLedger) {
				start, end := day("2024-01-01"), day("2024-03-15")
				m.EXPECT().
					List(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}).
					Return(ledger(), nil)
			},
			wantStatus: http.StatusOK,
			wantPeriod: "quarterly",
		},
		{
			name:   "ExplicitRange",
			target: "/reports/?start_date=2024-03-01&end_date=2024-03-31&period_type=monthly",
			setupMock: func(m *report.MockLedger) {
				m.EXPECT().List(gomock.Any(), owner, gomock.Any()).Return(ledger(), nil)
			},
			wantStatus: http.StatusOK,
			wantPeriod: "monthly",
		},
		{
			name:       "InvertedRange",
			target:     "/reports/?start_date=2024-04-01&end_date=2024-03-01",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownPreset",
			target:     "/reports/?preset=next_decade",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "MissingDates",
			target:     "/reports/",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.setupMock, tt.target)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				Period struct {
					Type string `json:"type"`
				} `json:"period"`
				Summary struct {
					Balance string `json:"balance"`
				} `json:"summary"`
				Categories []json.RawMessage `json:"categories"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantPeriod, body.Period.Type)
			assert.Equal(t, "-500.00", body.Summary.Balance)
			assert.Len(t, body.Categories, 2)
		})
	}
}

func TestHandler_Dashboard(t *testing.T) {
	rec := serve(t, func(m *report.MockLedger) {
		start, end := day("2023-10-01"), day("2024-03-31")
		m.EXPECT().
			Snapshot(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}, transaction.DefaultRecentLimit).
			Return(&transaction.Snapshot{Window: ledger(), Recent: ledger()[:1]}, nil)
	}, "/dashboard/")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		MonthlyComparison []struct {
			Label string `json:"label"`
		} `json:"monthly_comparison"`
		RecentTransactions []json.RawMessage `json:"recent_transactions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.MonthlyComparison, report.TrailingMonths)
	assert.Equal(t, "Oct 2023", body.MonthlyComparison[0].Label)
	assert.Equal(t, "Mar 2024", body.MonthlyComparison[5].Label)
	assert.Len(t, body.RecentTransactions, 1)
}
