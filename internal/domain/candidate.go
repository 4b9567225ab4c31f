package domain

import (
	"cloud.google.com/go/civil"
)

// RawCandidate is one pre-canonicalization transaction candidate produced by
// an extractor. All fields are raw strings exactly as found in the source;
// Index is the row or block index within the document, kept so diagnostics
// can point back at the original file location.
type RawCandidate struct {
	DocumentID int64
	Index      int

	BookingDateRaw string
	AmountRaw      string
	DirectionRaw   string
	Description    string

	AccountRef       string // own-account IBAN or account number
	CounterpartyName string
	CounterpartyIBAN string
	Currency         string
	BalanceRaw       string
}

// CanonicalFields is the normalized form of a candidate, used both for
// persistence and for transaction fingerprinting.
type CanonicalFields struct {
	AccountRef  string
	BookingDate civil.Date
	ValueDate   *civil.Date
	AmountMinor int64
	Currency    string
	Direction   Direction

	CounterpartyName string
	CounterpartyIBAN string

	// Description is the normalized matching form (folded, volatile tokens
	// stripped); RawDescription keeps the original text for audit.
	Description    string
	RawDescription string

	BalanceAfterMinor *int64
}

// CounterpartyRef is the fingerprint component for the counterparty: the
// IBAN when present, otherwise the name.
func (f CanonicalFields) CounterpartyRef() string {
	if f.CounterpartyIBAN != "" {
		return f.CounterpartyIBAN
	}
	return f.CounterpartyName
}
