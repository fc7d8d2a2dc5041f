package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/database"
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

// Expected column order: id, owner_id, name, kind, color, created_at
func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var kind string

	var color sql.NullString

	if err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &kind, &color, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Kind = category.Kind(kind)

	if color.Valid {
		c.Color = &color.String
	}

	return &c, nil
}

const selectCategoryColumns = `id, owner_id, name, kind, color, created_at`

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (owner_id, name, kind, color, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.OwnerID, c.Name, c.Kind, c.Color).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = $1 AND owner_id = $2`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories
		WHERE owner_id = $1
		ORDER BY lower(name), created_at, id`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cs []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return cs, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, color = $2
		WHERE id = $3 AND owner_id = $4
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Color, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}

// DeleteUnused locks the category row, checks for referencing transactions and
// deletes it in one database transaction. Concurrent inserts against the same
// category block on the row lock through the foreign key check, so a category
// can never be removed from under a transaction that references it.
func (s *Store) DeleteUnused(ctx context.Context, ownerID, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var locked uuid.UUID

	err = dbTx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category.ErrNotFound
		}

		return fmt.Errorf("locking category: %w", err)
	}

	var inUse bool
	if err := dbTx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)`, id,
	).Scan(&inUse); err != nil {
		return fmt.Errorf("checking category usage: %w", err)
	}

	if inUse {
		return category.ErrInUse
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return category.ErrInUse
		}

		return fmt.Errorf("deleting category: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) CountTransactions(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1`, id,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}
