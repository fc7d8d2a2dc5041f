// Package rules learns which category a statement description belongs to.
package rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
)

var ErrNotFound = fmt.Errorf("rule %w", apperr.ErrNotFound)

// Rule maps any description containing Pattern (case-insensitive) to a category.
type Rule struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Pattern      string
	CategoryID   uuid.UUID
	CategoryName string // Loaded via JOIN
	CreatedAt    time.Time
}
