package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

type reportState int

const (
	reportStateTimeframe reportState = iota
	reportStateLoading
	reportStateResult
	reportStatePath
)

type ReportModel struct {
	session  Session
	reports  *report.Service
	exporter *export.TextExporter

	state           reportState
	timeframePicker TimeframePicker
	spinner         spinner.Model
	form            *huh.Form
	dir             *string

	label  string
	report *report.FinancialReport
	err    error
	status string
}

func NewReportModel(session Session, reports *report.Service, exporter *export.TextExporter, now func() time.Time) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ReportModel{
		session:         session,
		reports:         reports,
		exporter:        exporter,
		state:           reportStateTimeframe,
		timeframePicker: NewTimeframePicker(now),
		spinner:         s,
		dir:             new("./exports"),
	}
}

func (m ReportModel) Title() string { return "Reports" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateResult:
		return "Esc: change timeframe | s: save statement"
	case reportStatePath:
		return "Esc: cancel | Enter: save"
	}

	return "Esc: back | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

type reportLoadedMsg struct {
	report *report.FinancialReport
	err    error
}

type statementSavedMsg struct {
	path string
	err  error
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.label = msg.Label
		m.state = reportStateLoading
		m.status = ""

		return m, tea.Batch(m.spinner.Tick, m.loadCmd(msg.Params))

	case reportLoadedMsg:
		m.state = reportStateResult
		m.report, m.err = msg.report, msg.err

		return m, nil

	case statementSavedMsg:
		m.state = reportStateResult

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
		} else {
			m.status = "Saved " + msg.path
		}

		return m, nil
	}

	switch m.state {
	case reportStateTimeframe:
		return m.updateTimeframe(msg)
	case reportStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case reportStateResult:
		return m.updateResult(msg)
	case reportStatePath:
		return m.updatePath(msg)
	}

	return m, nil
}

func (m ReportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ReportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.state = reportStateTimeframe
		m.timeframePicker.Reset()
	case "s":
		if m.report == nil {
			return m, nil
		}

		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Key("dir").
					Title("Output Directory").
					Description("Directory will be created if it doesn't exist").
					Placeholder("./exports").
					Value(m.dir),
			),
		).WithWidth(50).WithShowHelp(false)
		m.state = reportStatePath

		return m, m.form.Init()
	}

	return m, nil
}

func (m ReportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reportStateResult
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = reportStateLoading

	return m, tea.Batch(m.spinner.Tick, m.saveCmd(*m.dir))
}

func (m ReportModel) loadCmd(params report.ReportParams) tea.Cmd {
	reports, ownerID := m.reports, m.session.OwnerID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := reports.Report(ctx, ownerID, params)

		return reportLoadedMsg{report: r, err: err}
	}
}

func (m ReportModel) saveCmd(dir string) tea.Cmd {
	rep, exporter := m.report, m.exporter

	return func() tea.Msg {
		path, err := SaveStatement(exporter, rep, dir)
		return statementSavedMsg{path: path, err: err}
	}
}

// SaveStatement writes rep into dir under the exporter's file name.
func SaveStatement(exporter *export.TextExporter, rep *report.FinancialReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, exporter.Filename(rep))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating statement file: %w", err)
	}

	if err := exporter.Export(f, rep); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing statement file: %w", err)
	}

	return path, nil
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case reportStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Working...")

	case reportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case reportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ReportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	r := m.report

	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n",
		headerStyle.Render(m.label),
		faintStyle.Render(fmt.Sprintf("%s to %s (%s)", FormatDate(r.Period.StartDate), FormatDate(r.Period.EndDate), r.Period.Type)),
	)
	fmt.Fprintf(&b, "Income:  %s\nExpense: %s\nBalance: %s\n\n",
		incomeStyle.Render(FormatAmount(r.Summary.TotalIncome)),
		expenseStyle.Render(FormatAmount(r.Summary.TotalExpense)),
		FormatAmount(r.Summary.Balance),
	)

	b.WriteString(headerStyle.Render("Categories") + "\n")

	for _, c := range r.Categories {
		fmt.Fprintf(&b, "  %-20s %-8s %4d  %12s\n", c.CategoryName, c.CategoryKind, c.TransactionCount, FormatAmount(c.TotalAmount))
	}

	b.WriteString("\n" + headerStyle.Render("Monthly breakdown") + "\n")

	for _, ms := range r.MonthlyBreakdown {
		flag := ""
		if ms.IsOverspent {
			flag = expenseStyle.Render("  OVERSPENT")
		}

		fmt.Fprintf(&b, "  %s  in %12s  out %12s  balance %12s%s\n",
			report.MonthLabel(ms.Year, ms.Month),
			FormatAmount(ms.TotalIncome),
			FormatAmount(ms.TotalExpense),
			FormatAmount(ms.Balance),
			flag,
		)
	}

	if m.status != "" {
		b.WriteString("\n" + faintStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}
