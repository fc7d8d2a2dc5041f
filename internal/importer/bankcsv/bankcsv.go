// Package bankcsv reads CSV bank exports into statement rows. The layout is
// detected from the header row, which may be preceded by account metadata.
package bankcsv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/importer/charset"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/statement"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]statement.Row, error) {
	utf8r, enc, err := charset.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(records)
	if profile == nil {
		return nil, fmt.Errorf("no matching CSV layout: expected a header with date, description and amount columns")
	}

	slog.Debug("parsing csv statement", "profile", profile.Name, "encoding", enc, "records", len(records))

	return parseRows(profile, cols, records[headerIdx+1:], headerIdx)
}

// sniffDelimiter picks ';' or ',' by counting them in the first few lines.
func sniffDelimiter(br *bufio.Reader) rune {
	sample, _ := br.Peek(br.Size())

	lines := strings.SplitN(string(sample), "\n", 20)

	var semis, commas int

	for _, l := range lines {
		semis += strings.Count(l, ";")
		commas += strings.Count(l, ",")
	}

	if commas > semis {
		return ','
	}

	return ';'
}

type colIndex map[string]int

func detectProfile(records [][]string) (*Profile, colIndex, int) {
	for rowIdx, record := range records {
		cols := make(colIndex)

		for i, cell := range record {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a parseable date or a non-zero amount, which
// covers footers and page markers. headerRowNum is 0-based.
func parseRows(p *Profile, cols colIndex, records [][]string, headerRowNum int) ([]statement.Row, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var rows []statement.Row

	for i, record := range records {
		rowNum := headerRowNum + i + 2

		date, ok := parseDate(record, dateIdx, p.DateLayout)
		if !ok {
			continue
		}

		desc := cellValue(record, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, ok := parseAmount(p, cols, record)
		if !ok {
			continue
		}

		rows = append(rows, statement.Row{Date: date, Description: desc, Amount: amount})
	}

	return rows, nil
}

func parseDate(record []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(record, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseAmount(p *Profile, cols colIndex, record []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseCell(record, cols[p.AmountCol], p.DecimalComma)
	case amountSplit:
		if d, ok := parseCell(record, cols[p.DebitCol], p.DecimalComma); ok {
			return d.Abs().Neg(), true
		}

		if d, ok := parseCell(record, cols[p.CreditCol], p.DecimalComma); ok {
			return d.Abs(), true
		}
	}

	return decimal.Zero, false
}

// parseCell reads a non-zero amount. With decimalComma, "1.234,56" is 1234.56;
// otherwise "1,234.56" is.
func parseCell(record []string, idx int, decimalComma bool) (decimal.Decimal, bool) {
	s := cellValue(record, idx)
	if s == "" {
		return decimal.Zero, false
	}

	if decimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, " ", ""))
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}
