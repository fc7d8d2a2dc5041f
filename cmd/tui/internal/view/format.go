package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const dbTimeout = 5 * time.Second

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatSigned prefixes the amount with the direction implied by its category kind.
func FormatSigned(tx *transaction.Transaction) string {
	if tx.CategoryKind == category.KindExpense {
		return expenseStyle.Render("-" + FormatAmount(tx.Amount))
	}

	return incomeStyle.Render("+" + FormatAmount(tx.Amount))
}

func FormatDate(t time.Time) string {
	return calendar.Format(t)
}

func describe(tx *transaction.Transaction) string {
	if tx.Description == nil {
		return faintStyle.Render("(no description)")
	}

	return *tx.Description
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
