// Package fingerprint computes the two dedup keys used by ingestion: a
// content checksum for whole documents and a field-level fingerprint for
// canonical transactions.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// Content returns the hex SHA-256 digest of the exact document bytes.
func Content(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Transaction derives the idempotency key for a canonical transaction.
// The digest covers an ordered tuple of the canonical fields; two candidates
// that normalize to the same fields always produce the same fingerprint,
// regardless of which extractor produced them.
func Transaction(f domain.CanonicalFields) string {
	valueDate := ""
	if f.ValueDate != nil {
		valueDate = f.ValueDate.String()
	}

	parts := []string{
		strings.ToUpper(f.AccountRef),
		f.BookingDate.String(),
		valueDate,
		strconv.FormatInt(f.AmountMinor, 10),
		strings.ToUpper(f.Currency),
		string(f.Direction),
		strings.ToUpper(f.CounterpartyRef()),
		strings.ToUpper(f.Description),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
