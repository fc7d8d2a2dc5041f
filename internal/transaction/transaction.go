package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
)

var ErrNotFound = fmt.Errorf("transaction %w", apperr.ErrNotFound)

// Transaction is a single ledger entry. Amount is always a positive magnitude;
// whether it is an inflow or an outflow comes from the category kind.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Description *string
	Date        time.Time // calendar date, midnight UTC
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Loaded via JOIN on categories.
	CategoryName string
	CategoryKind category.Kind
}

// Signed returns the amount with the sign implied by the category kind.
func (t *Transaction) Signed() decimal.Decimal {
	if t.CategoryKind == category.KindExpense {
		return t.Amount.Neg()
	}

	return t.Amount
}

// Snapshot pairs a filtered window of the ledger with the most recently
// created entries, both read at the same moment.
type Snapshot struct {
	Window []*Transaction
	Recent []*Transaction
}
