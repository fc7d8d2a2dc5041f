package category

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
)

// Kind classifies a category as a source of income or an expense.
// A transaction's direction is derived from its category's kind; amounts are never signed.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

var (
	ErrNotFound = fmt.Errorf("category %w", apperr.ErrNotFound)
	ErrInUse    = fmt.Errorf("category has transactions: %w", apperr.ErrConflict)
)

// Category is a user-owned label for transactions. Kind is fixed at creation.
type Category struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Kind      Kind
	Color     *string
	CreatedAt time.Time
}
