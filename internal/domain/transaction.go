package domain

import (
	"cloud.google.com/go/civil"
)

// Direction is the signed side of a transaction.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Account is a bank account referenced by transactions. Created lazily the
// first time a statement mentions it; unique on (institution, iban, account_no).
type Account struct {
	ID          int64
	Institution string
	IBAN        string
	AccountNo   string
	Currency    string
}

// Merchant is a resolved counterparty. DisplayName is the first-seen raw
// name; NormalizedKey is the stable dedup key derived from it. CategoryID is
// assigned at creation or by an explicit enrichment pass, never overwritten
// silently.
type Merchant struct {
	ID            int64
	DisplayName   string
	NormalizedKey string
	CategoryID    *int64
}

// Category is reference data looked up by code.
type Category struct {
	ID    int64
	Code  string
	Label string
}

// Transaction is one canonical, deduplicated financial record.
// AmountMinor is an integer count of minor currency units (cents); the sign
// matches Direction (negative for DEBIT). Fingerprint is the idempotency key:
// a unique-constraint collision means "already ingested, skip".
type Transaction struct {
	ID          int64
	AccountID   int64
	DocumentID  int64
	Fingerprint string

	BookingDate civil.Date
	ValueDate   *civil.Date
	AmountMinor int64
	Currency    string
	Direction   Direction

	CounterpartyName string
	CounterpartyIBAN string
	Description      string // raw description, kept for display and audit

	MerchantID *int64
	CategoryID *int64

	BalanceAfterMinor *int64
}
