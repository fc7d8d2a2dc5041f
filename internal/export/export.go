// Package export renders financial reports for people to read outside the app.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

// TextExporter writes a FinancialReport as a plain-text statement.
type TextExporter struct{}

func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

func (e *TextExporter) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Filename is statement_YYYYMMDD_YYYYMMDD.txt for the report's period.
func (e *TextExporter) Filename(r *report.FinancialReport) string {
	return fmt.Sprintf("statement_%s_%s.txt",
		r.Period.StartDate.Format("20060102"),
		r.Period.EndDate.Format("20060102"),
	)
}

func (e *TextExporter) Export(w io.Writer, r *report.FinancialReport) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Statement %s to %s (%s)\n\n",
		calendar.Format(r.Period.StartDate),
		calendar.Format(r.Period.EndDate),
		r.Period.Type,
	)

	fmt.Fprintf(&sb, "Income:  %s\n", money(r.Summary.TotalIncome))
	fmt.Fprintf(&sb, "Expense: %s\n", money(r.Summary.TotalExpense))
	fmt.Fprintf(&sb, "Balance: %s\n", money(r.Summary.Balance))

	sb.WriteString("\nCategories\n")

	if len(r.Categories) == 0 {
		sb.WriteString("* No transactions\n")
	}

	for _, c := range r.Categories {
		sign := "+"
		if c.CategoryKind == category.KindExpense {
			sign = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %d %s | %s%s\n",
			c.CategoryName, c.CategoryKind, c.TransactionCount, plural(c.TransactionCount), sign, money(c.TotalAmount))
	}

	sb.WriteString("\nMonthly breakdown\n")

	for _, m := range r.MonthlyBreakdown {
		status := "OK"
		if m.IsOverspent {
			status = "OVERSPENT"
		}

		fmt.Fprintf(&sb, "* %s | in %s | out %s | balance %s | %s\n",
			report.MonthLabel(m.Year, m.Month), money(m.TotalIncome), money(m.TotalExpense), money(m.Balance), status)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing statement: %w", err)
	}

	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func plural(n int) string {
	if n == 1 {
		return "transaction"
	}

	return "transactions"
}
