package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	httptransaction "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

type monthlySummaryResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
	IsOverspent  bool   `json:"is_overspent"`
}

type categoryReportResponse struct {
	CategoryID       uuid.UUID     `json:"category_id"`
	CategoryName     string        `json:"category_name"`
	CategoryKind     category.Kind `json:"category_kind"`
	TotalAmount      string        `json:"total_amount"`
	TransactionCount int           `json:"transaction_count"`
}

type monthComparisonResponse struct {
	Label   string `json:"label"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type periodResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Type      report.PeriodType `json:"type"`
}

type summaryResponse struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
}

type financialReportResponse struct {
	Period           periodResponse           `json:"period"`
	Summary          summaryResponse          `json:"summary"`
	Categories       []categoryReportResponse `json:"categories"`
	MonthlyBreakdown []monthlySummaryResponse `json:"monthly_breakdown"`
}

type dashboardResponse struct {
	CurrentMonthSummary monthlySummaryResponse     `json:"current_month_summary"`
	RecentTransactions  []httptransaction.Response `json:"recent_transactions"`
	MonthlyComparison   []monthComparisonResponse  `json:"monthly_comparison"`
	TopCategories       []categoryReportResponse   `json:"top_categories"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toMonthlySummary(s report.MonthlySummary) monthlySummaryResponse {
	return monthlySummaryResponse{
		Year:         s.Year,
		Month:        int(s.Month),
		TotalIncome:  money(s.TotalIncome),
		TotalExpense: money(s.TotalExpense),
		Balance:      money(s.Balance),
		IsOverspent:  s.IsOverspent,
	}
}

func toCategoryReports(cs []report.CategoryReport) []categoryReportResponse {
	resp := make([]categoryReportResponse, len(cs))
	for i, c := range cs {
		resp[i] = categoryReportResponse{
			CategoryID:       c.CategoryID,
			CategoryName:     c.CategoryName,
			CategoryKind:     c.CategoryKind,
			TotalAmount:      money(c.TotalAmount),
			TransactionCount: c.TransactionCount,
		}
	}

	return resp
}

func toFinancialReport(r *report.FinancialReport) financialReportResponse {
	months := make([]monthlySummaryResponse, len(r.MonthlyBreakdown))
	for i, m := range r.MonthlyBreakdown {
		months[i] = toMonthlySummary(m)
	}

	return financialReportResponse{
		Period: periodResponse{
			StartDate: calendar.Format(r.Period.StartDate),
			EndDate:   calendar.Format(r.Period.EndDate),
			Type:      r.Period.Type,
		},
		Summary: summaryResponse{
			TotalIncome:  money(r.Summary.TotalIncome),
			TotalExpense: money(r.Summary.TotalExpense),
			Balance:      money(r.Summary.Balance),
		},
		Categories:       toCategoryReports(r.Categories),
		MonthlyBreakdown: months,
	}
}

func toDashboard(d *report.DashboardData) dashboardResponse {
	comparison := make([]monthComparisonResponse, len(d.MonthlyComparison))
	for i, m := range d.MonthlyComparison {
		comparison[i] = monthComparisonResponse{
			Label:   m.Label,
			Year:    m.Year,
			Month:   int(m.Month),
			Income:  money(m.Income),
			Expense: money(m.Expense),
		}
	}

	return dashboardResponse{
		CurrentMonthSummary: toMonthlySummary(d.CurrentMonthSummary),
		RecentTransactions:  httptransaction.ToResponseList(d.RecentTransactions),
		MonthlyComparison:   comparison,
		TopCategories:       toCategoryReports(d.TopCategories),
	}
}
