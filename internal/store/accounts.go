package store

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// EnsureAccount creates the account on first sighting and returns its ID.
// Insert-ignore-then-read-back on the (institution, iban, account_no)
// uniqueness constraint, so concurrent candidates referencing the same
// account never create two rows. IBAN and account number are stored as empty
// strings rather than NULLs to keep the uniqueness constraint effective.
func (s *Store) EnsureAccount(ctx context.Context, acc domain.Account) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (institution, iban, account_no, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(institution, iban, account_no) DO NOTHING`,
		acc.Institution, acc.IBAN, acc.AccountNo, acc.Currency,
	)
	if err != nil {
		return 0, fmt.Errorf("EnsureAccount: inserting row: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM accounts WHERE institution = ? AND iban = ? AND account_no = ?`,
		acc.Institution, acc.IBAN, acc.AccountNo,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("EnsureAccount: reading back: %w", err)
	}
	return id, nil
}
