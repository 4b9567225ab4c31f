package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EnsureMerchant resolves a merchant by normalized key, creating it with the
// given display name on first sighting. The insert is guarded by the UNIQUE
// constraint on normalized_key; the display name of an existing merchant is
// never overwritten, and created merchants carry no category (category
// assignment is an explicit enrichment step).
func (s *Store) EnsureMerchant(ctx context.Context, normalizedKey, displayName string) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchants (display_name, normalized_key)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`,
		displayName, normalizedKey,
	)
	if err != nil {
		return 0, fmt.Errorf("EnsureMerchant: inserting row: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM merchants WHERE normalized_key = ?`, normalizedKey,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("EnsureMerchant: reading back: %w", err)
	}
	return id, nil
}

// SetMerchantCategory assigns a category to a merchant that has none.
// Merchants with a category keep it; the update is a no-op then, which makes
// enrichment idempotent and keeps manual overrides intact.
func (s *Store) SetMerchantCategory(ctx context.Context, merchantID, categoryID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE merchants SET category_id = ? WHERE id = ? AND category_id IS NULL`,
		categoryID, merchantID,
	)
	if err != nil {
		return fmt.Errorf("SetMerchantCategory: updating row: %w", err)
	}
	return nil
}

// MerchantCategory returns the category of a merchant, or nil when none is
// assigned.
func (s *Store) MerchantCategory(ctx context.Context, merchantID int64) (*int64, error) {
	var categoryID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT category_id FROM merchants WHERE id = ?`, merchantID,
	).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("MerchantCategory: merchant %d not found", merchantID)
	}
	if err != nil {
		return nil, fmt.Errorf("MerchantCategory: scanning row: %w", err)
	}
	if !categoryID.Valid {
		return nil, nil
	}
	id := categoryID.Int64
	return &id, nil
}
