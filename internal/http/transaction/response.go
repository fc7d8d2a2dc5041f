package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// Response is the wire shape of a transaction, shared with the import endpoints.
type Response struct {
	ID           uuid.UUID     `json:"id"`
	CategoryID   uuid.UUID     `json:"category_id"`
	CategoryName string        `json:"category_name"`
	CategoryKind category.Kind `json:"category_kind"`
	Amount       string        `json:"amount"`
	Description  *string       `json:"description,omitempty"`
	Date         string        `json:"date"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:           tx.ID,
		CategoryID:   tx.CategoryID,
		CategoryName: tx.CategoryName,
		CategoryKind: tx.CategoryKind,
		Amount:       tx.Amount.StringFixed(2),
		Description:  tx.Description,
		Date:         calendar.Format(tx.Date),
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

// Params is the wire shape of a transaction that has not been written yet.
type Params struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
}

func ToParams(p transaction.CreateParams) Params {
	return Params{
		CategoryID:  p.CategoryID,
		Amount:      p.Amount.StringFixed(2),
		Description: p.Description,
		Date:        calendar.Format(p.Date),
	}
}
