// Package statement holds the rows parsed out of a bank statement.
package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one statement line. Amount is signed as the bank reports it:
// negative for money leaving the account.
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}
