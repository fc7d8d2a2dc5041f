package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
)

const (
	DefaultRecentLimit = 10
	maxRecentLimit     = 100
)

// maxAmount is the first value that no longer fits NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// CreateTransaction inserts tx only if its category belongs to tx.OwnerID.
	// It fills ID, timestamps and the joined category fields.
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Transaction, error)
	RecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Transaction, error)
	// SnapshotTransactions runs the filtered list and the recent list inside
	// one read-only transaction so both observe the same ledger state.
	SnapshotTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter, recentLimit int) (*Snapshot, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) error

	// BeginImport opens a database transaction holding the owner's import lock.
	BeginImport(ctx context.Context, ownerID uuid.UUID) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, ownerID uuid.UUID, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// CategoryLookup resolves an owner's category. *category.Service satisfies it.
type CategoryLookup interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLookup
}

func NewService(repo Repository, categories CategoryLookup) *Service {
	return &Service{repo: repo, categories: categories}
}

type CreateParams struct {
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// UpdateParams changes only the supplied fields.
type UpdateParams struct {
	CategoryID       *uuid.UUID
	Amount           *decimal.Decimal
	Description      *string
	ClearDescription bool
	Date             *time.Time
}

// ListFilter bounds are inclusive calendar dates.
type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uuid.UUID
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if _, err := s.categories.Get(ctx, ownerID, params.CategoryID); err != nil {
		return nil, err
	}

	tx := params.toTransaction(ownerID)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, ownerID, id)
}

// List returns the owner's transactions, newest transaction date first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	return s.repo.ListTransactions(ctx, ownerID, filter)
}

// Recent returns the most recently created transactions.
func (s *Service) Recent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Transaction, error) {
	return s.repo.RecentTransactions(ctx, ownerID, recentLimit(limit))
}

// Snapshot reads List(filter) and Recent(limit) from the same point in time.
func (s *Service) Snapshot(ctx context.Context, ownerID uuid.UUID, filter ListFilter, limit int) (*Snapshot, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	return s.repo.SnapshotTransactions(ctx, ownerID, filter, recentLimit(limit))
}

func (f ListFilter) validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return fmt.Errorf("start date after end date: %w", apperr.ErrInvalidRange)
	}

	return nil
}

func recentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}

	return min(limit, maxRecentLimit)
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.CategoryID != nil && *params.CategoryID != tx.CategoryID {
		c, err := s.categories.Get(ctx, ownerID, *params.CategoryID)
		if err != nil {
			return nil, err
		}

		tx.CategoryID = c.ID
		tx.CategoryName = c.Name
		tx.CategoryKind = c.Kind
	}

	if params.Amount != nil {
		if err := validAmount(*params.Amount); err != nil {
			return nil, err
		}

		tx.Amount = *params.Amount
	}

	switch {
	case params.ClearDescription:
		tx.Description = nil
	case params.Description != nil:
		tx.Description = normalizeDescription(*params.Description)
	}

	if params.Date != nil {
		if params.Date.IsZero() {
			return nil, apperr.Validation("date", "is required")
		}

		tx.Date = calendar.Day(*params.Date)
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, ownerID, id)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date        string
	Amount      string
	CategoryID  uuid.UUID
	Description string
}

func keyOf(date time.Time, amount decimal.Decimal, categoryID uuid.UUID, description string) dupKey {
	return dupKey{
		Date:        calendar.Format(date),
		Amount:      amount.StringFixed(2),
		CategoryID:  categoryID,
		Description: strings.TrimSpace(description),
	}
}

// ImportBatch writes params unless one of them matches an existing
// transaction (same date, amount, category and description). When conflicts
// exist nothing is written and the caller decides via CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, ownerID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	if err := s.validateBatch(ctx, ownerID, params); err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, ownerID, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))

	for _, d := range duplicates {
		var desc string
		if d.Description != nil {
			desc = *d.Description
		}

		lookup[keyOf(d.Date, d.Amount, d.CategoryID, desc)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.CategoryID, p.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(ownerID, newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch writes every row in one database transaction.
func (s *Service) CreateBatch(ctx context.Context, ownerID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	if err := s.validateBatch(ctx, ownerID, params); err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := paramsToTransactions(ownerID, params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func (s *Service) validateBatch(ctx context.Context, ownerID uuid.UUID, params []CreateParams) error {
	seen := make(map[uuid.UUID]struct{})

	for i, p := range params {
		if err := p.validate(); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		if _, ok := seen[p.CategoryID]; ok {
			continue
		}

		if _, err := s.categories.Get(ctx, ownerID, p.CategoryID); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		seen[p.CategoryID] = struct{}{}
	}

	return nil
}

func (p CreateParams) validate() error {
	if p.CategoryID == uuid.Nil {
		return apperr.Validation("category_id", "is required")
	}

	if err := validAmount(p.Amount); err != nil {
		return err
	}

	if p.Date.IsZero() {
		return apperr.Validation("date", "is required")
	}

	return nil
}

func (p CreateParams) toTransaction(ownerID uuid.UUID) *Transaction {
	return &Transaction{
		OwnerID:     ownerID,
		CategoryID:  p.CategoryID,
		Amount:      p.Amount,
		Description: normalizeDescription(p.Description),
		Date:        calendar.Day(p.Date),
	}
}

func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation("amount", "must be greater than zero")
	}

	if !amount.Equal(amount.Round(2)) {
		return apperr.Validation("amount", "must have at most two decimal places")
	}

	if amount.GreaterThanOrEqual(maxAmount) {
		return apperr.Validation("amount", "must be less than %s", maxAmount)
	}

	return nil
}

func normalizeDescription(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}

func paramsToTransactions(ownerID uuid.UUID, params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = p.toTransaction(ownerID)
	}

	return txs
}
