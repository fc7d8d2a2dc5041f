package bankcsv

import "time"

type amountMode int

const (
	// amountSingle is one signed column, e.g. "Montante" holding "-10,00".
	amountSingle amountMode = iota
	// amountSplit is separate debit and credit columns holding magnitudes.
	amountSplit
)

// Profile describes the column layout of one CSV export format. Column names
// are matched case-insensitively after trimming.
type Profile struct {
	Name         string
	DateCol      string
	DateLayout   string
	DescCol      string
	AmountMode   amountMode
	AmountCol    string
	DebitCol     string
	CreditCol    string
	DecimalComma bool
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:         "cgd-cartao",
		DateCol:      "data",
		DateLayout:   "02-01-2006",
		DescCol:      "descrição",
		AmountMode:   amountSplit,
		DebitCol:     "débito",
		CreditCol:    "crédito",
		DecimalComma: true,
	},
	{
		Name:         "cgd-extrato",
		DateCol:      "data mov.",
		DateLayout:   "02-01-2006",
		DescCol:      "descrição",
		AmountMode:   amountSingle,
		AmountCol:    "movimento",
		DecimalComma: true,
	},
	{
		Name:         "cgd-conta",
		DateCol:      "data mov.",
		DateLayout:   "02-01-2006",
		DescCol:      "descrição",
		AmountMode:   amountSingle,
		AmountCol:    "montante",
		DecimalComma: true,
	},
	{
		Name:       "generic",
		DateCol:    "date",
		DateLayout: time.DateOnly,
		DescCol:    "description",
		AmountMode: amountSingle,
		AmountCol:  "amount",
	},
}
