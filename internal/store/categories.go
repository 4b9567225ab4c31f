package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// EnsureCategory creates a category for a mapping-rule code on first use and
// returns its ID. Guarded by the UNIQUE constraint on code.
func (s *Store) EnsureCategory(ctx context.Context, code, label string) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (code, label) VALUES (?, ?)
		ON CONFLICT(code) DO NOTHING`,
		code, label,
	)
	if err != nil {
		return 0, fmt.Errorf("EnsureCategory: inserting row: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE code = ?`, code).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("EnsureCategory: reading back: %w", err)
	}
	return id, nil
}

// FindCategoryByCode looks a category up by code. Returns nil when unknown;
// the core never invents categories outside an explicit mapping rule.
func (s *Store) FindCategoryByCode(ctx context.Context, code string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, label FROM categories WHERE code = ?`, code,
	).Scan(&c.ID, &c.Code, &c.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindCategoryByCode: scanning row: %w", err)
	}
	return &c, nil
}

// ListCategories returns all categories ordered by code.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, label FROM categories ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: querying: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Label); err != nil {
			return nil, fmt.Errorf("ListCategories: scanning row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
