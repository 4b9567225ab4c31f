package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// InsertResult is the outcome of a conditional transaction insert.
type InsertResult int

const (
	// Inserted means this call created the row.
	Inserted InsertResult = iota
	// Duplicate means the fingerprint was already present. Re-ingestion is
	// expected; this is a successful outcome, not an error or a warning.
	Duplicate
)

// InsertTransactionIfNew persists a transaction unless its fingerprint is
// already known. The whole check-and-insert is one statement against the
// UNIQUE constraint on txn_fingerprint: of N concurrent ingestions of the
// same canonical record, exactly one observes Inserted.
func (s *Store) InsertTransactionIfNew(ctx context.Context, tx *domain.Transaction) (InsertResult, error) {
	var valueDate interface{}
	if tx.ValueDate != nil {
		valueDate = tx.ValueDate.String()
	}
	var balance interface{}
	if tx.BalanceAfterMinor != nil {
		balance = *tx.BalanceAfterMinor
	}
	var merchantID interface{}
	if tx.MerchantID != nil {
		merchantID = *tx.MerchantID
	}
	var categoryID interface{}
	if tx.CategoryID != nil {
		categoryID = *tx.CategoryID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			account_id, document_id, txn_fingerprint, booking_date, value_date,
			amount_minor, currency, direction, counterparty_name,
			counterparty_iban, description, merchant_id, category_id,
			balance_after_minor
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(txn_fingerprint) DO NOTHING`,
		tx.AccountID, tx.DocumentID, tx.Fingerprint, tx.BookingDate.String(), valueDate,
		tx.AmountMinor, tx.Currency, string(tx.Direction), tx.CounterpartyName,
		tx.CounterpartyIBAN, tx.Description, merchantID, categoryID, balance,
	)
	if err != nil {
		return Duplicate, fmt.Errorf("InsertTransactionIfNew: inserting row: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Duplicate, fmt.Errorf("InsertTransactionIfNew: rows affected: %w", err)
	}
	if n > 0 {
		if id, err := res.LastInsertId(); err == nil {
			tx.ID = id
		}
		return Inserted, nil
	}
	return Duplicate, nil
}

// ListUncategorized returns transactions with no category assigned, for the
// enrichment pass.
func (s *Store) ListUncategorized(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, document_id, txn_fingerprint, booking_date,
		       value_date, amount_minor, currency, direction,
		       counterparty_name, counterparty_iban, description, merchant_id
		FROM transactions WHERE category_id IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("ListUncategorized: querying: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var booking string
		var valueDate sql.NullString
		var direction string
		var merchantID sql.NullInt64
		err := rows.Scan(&tx.ID, &tx.AccountID, &tx.DocumentID, &tx.Fingerprint,
			&booking, &valueDate, &tx.AmountMinor, &tx.Currency, &direction,
			&tx.CounterpartyName, &tx.CounterpartyIBAN, &tx.Description, &merchantID)
		if err != nil {
			return nil, fmt.Errorf("ListUncategorized: scanning row: %w", err)
		}
		if d, err := civil.ParseDate(booking); err == nil {
			tx.BookingDate = d
		}
		if valueDate.Valid {
			if d, err := civil.ParseDate(valueDate.String); err == nil {
				tx.ValueDate = &d
			}
		}
		tx.Direction = domain.Direction(direction)
		if merchantID.Valid {
			id := merchantID.Int64
			tx.MerchantID = &id
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// SetTransactionCategory back-fills the category of one transaction. Only
// the category reference is mutable after insert; canonical fields never
// change.
func (s *Store) SetTransactionCategory(ctx context.Context, txID, categoryID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id = ? AND category_id IS NULL`,
		categoryID, txID,
	)
	if err != nil {
		return fmt.Errorf("SetTransactionCategory: updating row: %w", err)
	}
	return nil
}

// CountTransactions reports the total number of persisted transactions.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountTransactions: scanning: %w", err)
	}
	return n, nil
}
