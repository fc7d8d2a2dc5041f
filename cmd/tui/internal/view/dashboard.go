package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

const barWidth = 30

type DashboardModel struct {
	session Session
	reports *report.Service
	now     func() time.Time

	data    *report.DashboardData
	loading bool
	err     error
}

func NewDashboardModel(session Session, reports *report.Service, now func() time.Time) DashboardModel {
	return DashboardModel{
		session: session,
		reports: reports,
		now:     now,
		loading: true,
	}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

type dashboardMsg struct {
	data *report.DashboardData
	err  error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	reports, ownerID, now := m.reports, m.session.OwnerID, m.now()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		data, err := reports.Dashboard(ctx, ownerID, now)

		return dashboardMsg{data: data, err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.data, m.err = msg.data, msg.err

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	s := m.data.CurrentMonthSummary

	balance := incomeStyle.Render(FormatAmount(s.Balance))
	if s.IsOverspent {
		balance = expenseStyle.Render(FormatAmount(s.Balance) + "  OVERSPENT")
	}

	summary := fmt.Sprintf("%s\n\nIncome:  %s\nExpense: %s\nBalance: %s",
		headerStyle.Render(report.MonthLabel(s.Year, s.Month)),
		FormatAmount(s.TotalIncome),
		FormatAmount(s.TotalExpense),
		balance,
	)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		box.Render(summary),
		box.Render(m.topCategoriesView()),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		top,
		box.Render(m.comparisonView()),
		box.Render(m.recentView()),
	))
}

func (m DashboardModel) comparisonView() string {
	var peak decimal.Decimal

	for _, c := range m.data.MonthlyComparison {
		peak = decimal.Max(peak, c.Income, c.Expense)
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Last %d months", report.TrailingMonths)) + "\n")

	for _, c := range m.data.MonthlyComparison {
		fmt.Fprintf(&b, "\n%s  in  %s %s\n", c.Label, incomeStyle.Render(bar(c.Income, peak)), FormatAmount(c.Income))
		fmt.Fprintf(&b, "%s  out %s %s\n", strings.Repeat(" ", len(c.Label)), expenseStyle.Render(bar(c.Expense, peak)), FormatAmount(c.Expense))
	}

	return b.String()
}

// bar scales v against peak into at most barWidth cells.
func bar(v, peak decimal.Decimal) string {
	if !peak.IsPositive() {
		return strings.Repeat(" ", barWidth)
	}

	n := int(v.Mul(decimal.NewFromInt(barWidth)).Div(peak).IntPart())

	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}

func (m DashboardModel) topCategoriesView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Top categories") + "\n\n")

	if len(m.data.TopCategories) == 0 {
		b.WriteString(faintStyle.Render("Nothing this period"))
	}

	for _, c := range m.data.TopCategories {
		fmt.Fprintf(&b, "%-20s %12s  %s\n", c.CategoryName, FormatAmount(c.TotalAmount), faintStyle.Render(string(c.CategoryKind)))
	}

	return b.String()
}

func (m DashboardModel) recentView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Recent transactions") + "\n\n")

	if len(m.data.RecentTransactions) == 0 {
		b.WriteString(faintStyle.Render("No transactions yet"))
	}

	for _, tx := range m.data.RecentTransactions {
		fmt.Fprintf(&b, "%s  %-16s %12s  %s\n", FormatDate(tx.Date), tx.CategoryName, FormatSigned(tx), describe(tx))
	}

	return b.String()
}
