package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/database"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row joined with its category.
// Expected column order: id, owner_id, category_id, category_name, category_kind,
// amount, description, transaction_date, created_at, updated_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var kind string

	var desc sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.OwnerID, &tx.CategoryID, &tx.CategoryName, &kind,
		&tx.Amount, &desc, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.CategoryKind = category.Kind(kind)
	tx.Date = tx.Date.UTC()

	if desc.Valid {
		tx.Description = &desc.String
	}

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.owner_id, t.category_id, c.name, c.kind,
	t.amount, t.description, t.transaction_date, t.created_at, t.updated_at
`

const fromTransactions = `
	FROM transactions t
	JOIN categories c ON c.id = t.category_id
`

// insertTransaction only inserts when the category belongs to the owner, so
// the ownership check and the write are one statement.
const insertTransaction = `
	WITH inserted AS (
		INSERT INTO transactions (owner_id, category_id, amount, description, transaction_date, created_at, updated_at)
		SELECT $1, c.id, $3, $4, $5, NOW(), NOW()
		FROM categories c
		WHERE c.id = $2 AND c.owner_id = $1
		RETURNING id, category_id, created_at, updated_at
	)
	SELECT i.id, i.created_at, i.updated_at, c.name, c.kind
	FROM inserted i
	JOIN categories c ON c.id = i.category_id
`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q queryRower, tx *transaction.Transaction) error {
	var kind string

	err := q.QueryRowContext(ctx, insertTransaction,
		tx.OwnerID,
		tx.CategoryID,
		tx.Amount,
		tx.Description,
		tx.Date,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt, &tx.CategoryName, &kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || database.IsForeignKeyViolation(err) {
			return category.ErrNotFound
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	tx.CategoryKind = category.Kind(kind)

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	return insert(ctx, s.db, tx)
}

func (s *Store) GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.id = $1 AND t.owner_id = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query, args := listQuery(ownerID, filter)
	return s.query(ctx, s.db, query, args...)
}

func listQuery(ownerID uuid.UUID, filter transaction.ListFilter) (string, []any) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.owner_id = $1`

	args := []any{ownerID}

	argIdx := 2

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.transaction_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.transaction_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND t.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
	}

	query += " ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC"

	return query, args
}

// Rows written by one batch share created_at, so id breaks the tie.
const recentQuery = `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.owner_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2`

func (s *Store) RecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]*transaction.Transaction, error) {
	return s.query(ctx, s.db, recentQuery, ownerID, limit)
}

// SnapshotTransactions reads the window and the recent list in one read-only
// REPEATABLE READ transaction, so an insert landing between the two reads is
// either in both or in neither.
func (s *Store) SnapshotTransactions(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter, recentLimit int) (*transaction.Snapshot, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot: %w", err)
	}
	defer dbTx.Rollback()

	query, args := listQuery(ownerID, filter)

	window, err := s.query(ctx, dbTx, query, args...)
	if err != nil {
		return nil, err
	}

	recent, err := s.query(ctx, dbTx, recentQuery, ownerID, recentLimit)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing snapshot: %w", err)
	}

	return &transaction.Snapshot{Window: window, Recent: recent}, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions t
		SET category_id = $1, amount = $2, description = $3, transaction_date = $4, updated_at = NOW()
		WHERE t.id = $5 AND t.owner_id = $6
		  AND EXISTS (SELECT 1 FROM categories c WHERE c.id = $1 AND c.owner_id = $6)
		RETURNING t.updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.CategoryID,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.ID,
		tx.OwnerID,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrNotFound
		}

		if database.IsForeignKeyViolation(err) {
			return category.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func importLockKey(ownerID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("import"))
	h.Write([]byte{0})
	h.Write(ownerID[:])

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport serialises imports per owner with a transaction-scoped advisory lock.
func (s *Store) BeginImport(ctx context.Context, ownerID uuid.UUID) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(ownerID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

// FindDuplicates returns the owner's transactions in the batch's date range
// that share date, amount, category and description with an incoming row.
func (itx *importTx) FindDuplicates(ctx context.Context, ownerID uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		CategoryID  uuid.UUID
		Description string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        calendar.Format(p.Date),
			Amount:      p.Amount.StringFixed(2),
			CategoryID:  p.CategoryID,
			Description: strings.TrimSpace(p.Description),
		}] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.owner_id = $1 AND t.transaction_date >= $2 AND t.transaction_date <= $3
		ORDER BY t.transaction_date ASC, t.id ASC`

	rows, err := itx.tx.QueryContext(ctx, query, ownerID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		var desc string
		if tx.Description != nil {
			desc = *tx.Description
		}

		k := lookupKey{
			Date:        calendar.Format(tx.Date),
			Amount:      tx.Amount.StringFixed(2),
			CategoryID:  tx.CategoryID,
			Description: desc,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return err
		}
	}

	return nil
}
