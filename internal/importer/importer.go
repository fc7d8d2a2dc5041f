// Package importer turns bank statements into transactions, picking a
// category for each row from learned rules or the caller's defaults.
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/ofx"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/statement"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
)

type Parser interface {
	Parse(r io.Reader) ([]statement.Row, error)
}

//go:generate mockgen -source=importer.go -destination=suggester_mock.go -package=importer
type Suggester interface {
	Suggest(ctx context.Context, ownerID uuid.UUID, description string) (*rules.Rule, error)
}

// Defaults are the categories used when no rule matches: positive rows go to
// Income, negative rows to Expense.
type Defaults struct {
	IncomeCategoryID  uuid.UUID
	ExpenseCategoryID uuid.UUID
}

type Service struct {
	parsers   map[Format]Parser
	suggester Suggester
}

func NewService(suggester Suggester) *Service {
	return &Service{
		parsers: map[Format]Parser{
			FormatCSV: bankcsv.NewParser(),
			FormatOFX: ofx.NewParser(),
		},
		suggester: suggester,
	}
}

// ParseFormat accepts the file extensions the parsers understand.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "ofx", "qfx":
		return FormatOFX, nil
	default:
		return "", apperr.Validation("format", "unsupported statement format %q", s)
	}
}

func (s *Service) Parse(format Format, r io.Reader) ([]statement.Row, error) {
	p, ok := s.parsers[format]
	if !ok {
		return nil, apperr.Validation("format", "unsupported statement format %q", format)
	}

	rows, err := p.Parse(r)
	if err != nil {
		return nil, apperr.Validation("file", "%v", err)
	}

	return rows, nil
}

// Categorize converts rows into transaction params. Stored amounts are
// magnitudes; the sign only steers the default category.
func (s *Service) Categorize(ctx context.Context, ownerID uuid.UUID, rows []statement.Row, d Defaults) ([]transaction.CreateParams, error) {
	params := make([]transaction.CreateParams, 0, len(rows))

	for i, row := range rows {
		categoryID := d.IncomeCategoryID
		if row.Amount.IsNegative() {
			categoryID = d.ExpenseCategoryID
		}

		rule, err := s.suggester.Suggest(ctx, ownerID, row.Description)
		if err != nil {
			return nil, fmt.Errorf("row %d: suggest category: %w", i+1, err)
		}

		if rule != nil {
			categoryID = rule.CategoryID
		}

		if categoryID == uuid.Nil {
			return nil, apperr.Validation("category", "row %d: no rule matched and no default category given", i+1)
		}

		params = append(params, transaction.CreateParams{
			CategoryID:  categoryID,
			Amount:      row.Amount.Abs(),
			Description: row.Description,
			Date:        row.Date,
		})
	}

	return params, nil
}
