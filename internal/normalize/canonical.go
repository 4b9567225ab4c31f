// Package normalize turns raw extractor output into canonical transaction
// fields: locale-aware amount parsing into integer minor units, fixed-format
// date parsing, and description normalization with volatile-token stripping.
package normalize

import (
	"fmt"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// DefaultCurrency is assumed when the source carries no currency column.
const DefaultCurrency = "EUR"

// RejectError reports a candidate whose required fields could not be
// canonicalized. It is recoverable per record: the caller logs a parse event
// and moves on to the next candidate.
type RejectError struct {
	Field  string
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("reject candidate: field %s: %s", e.Field, e.Reason)
}

func reject(field, format string, args ...interface{}) error {
	return &RejectError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Canonicalize converts one raw candidate into canonical fields. It is a
// pure transformation: no I/O, no store access. A missing or unparseable
// required field (account reference, booking date, amount) yields a
// *RejectError; everything else degrades to sensible defaults.
func Canonicalize(c domain.RawCandidate) (domain.CanonicalFields, error) {
	var out domain.CanonicalFields

	out.AccountRef = Text(c.AccountRef)
	if out.AccountRef == "" {
		return out, reject("account", "missing account reference")
	}

	bookingDate, err := ParseDate(Text(c.BookingDateRaw))
	if err != nil {
		return out, reject("booking_date", "%v", err)
	}
	out.BookingDate = bookingDate

	magnitude, err := ParseAmountMinor(c.AmountRaw)
	if err != nil {
		return out, reject("amount", "%v", err)
	}

	direction, err := ParseDirection(c.DirectionRaw)
	if err != nil {
		return out, reject("direction", "%v", err)
	}
	out.Direction = direction
	out.AmountMinor = ApplyDirection(magnitude, direction)

	out.Currency = Text(c.Currency)
	if out.Currency == "" {
		out.Currency = DefaultCurrency
	}

	out.CounterpartyName = Text(c.CounterpartyName)
	out.CounterpartyIBAN = Text(c.CounterpartyIBAN)

	out.RawDescription = Text(c.Description)
	out.Description = Fold(Description(c.Description))
	out.ValueDate = ExtractValueDate(c.Description)

	if bal := Text(c.BalanceRaw); bal != "" {
		if minor, err := ParseAmountMinor(bal); err == nil {
			out.BalanceAfterMinor = &minor
		}
	}

	return out, nil
}
