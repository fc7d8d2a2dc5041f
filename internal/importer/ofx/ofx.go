// Package ofx reads OFX and QFX statements into statement rows.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/statement"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)
	// SGML exports sometimes drop the closing bracket of a bare tag line.
	openTagRe = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]statement.Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ofx: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(clean(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("parse ofx: %w", err)
	}

	var rows []statement.Row

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			rows = appendTransactions(rows, stmt.BankTranList.Transactions)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			rows = appendTransactions(rows, stmt.BankTranList.Transactions)
		}
	}

	slog.Debug("parsed ofx statement", "rows", len(rows), "bank", len(resp.Bank), "credit_card", len(resp.CreditCard))

	return rows, nil
}

func clean(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)

	return openTagRe.ReplaceAllString(content, "$1>")
}

func appendTransactions(rows []statement.Row, txs []ofxgo.Transaction) []statement.Row {
	for _, tx := range txs {
		amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
		if err != nil || amount.IsZero() {
			continue
		}

		rows = append(rows, statement.Row{
			Date:        calendar.Day(tx.DtPosted.Time),
			Description: description(tx),
			Amount:      amount,
		})
	}

	return rows
}

// description prefers the payee, then NAME, then MEMO.
func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && strings.TrimSpace(string(tx.Payee.Name)) != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}

	return strings.TrimSpace(string(tx.Memo))
}
