package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, owner_id, pattern, category_id, category_name, created_at
func scanRule(s scanner) (*rules.Rule, error) {
	var r rules.Rule
	if err := s.Scan(&r.ID, &r.OwnerID, &r.Pattern, &r.CategoryID, &r.CategoryName, &r.CreatedAt); err != nil {
		return nil, err
	}

	return &r, nil
}

const selectRuleColumns = `r.id, r.owner_id, r.pattern, r.category_id, c.name, r.created_at`

func (s *Store) SaveRule(ctx context.Context, r *rules.Rule) error {
	query := `
		INSERT INTO category_rules (owner_id, pattern, category_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (owner_id, pattern) DO UPDATE SET category_id = EXCLUDED.category_id
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, r.OwnerID, r.Pattern, r.CategoryID).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("saving rule: %w", err)
	}

	return nil
}

func (s *Store) FindMatch(ctx context.Context, ownerID uuid.UUID, description string) (*rules.Rule, error) {
	query := `SELECT ` + selectRuleColumns + `
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id
		WHERE r.owner_id = $1 AND strpos(lower($2), lower(r.pattern)) > 0
		ORDER BY length(r.pattern) DESC, r.created_at DESC
		LIMIT 1`

	r, err := scanRule(s.db.QueryRowContext(ctx, query, ownerID, description))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return r, nil
}

func (s *Store) ListRules(ctx context.Context, ownerID uuid.UUID) ([]*rules.Rule, error) {
	query := `SELECT ` + selectRuleColumns + `
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id
		WHERE r.owner_id = $1
		ORDER BY lower(r.pattern)`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rs []*rules.Rule

	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rs, nil
}

func (s *Store) DeleteRule(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	if n == 0 {
		return rules.ErrNotFound
	}

	return nil
}
