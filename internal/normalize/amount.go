package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// ParseAmountMinor parses a locale-formatted amount string into an integer
// count of minor currency units. Dutch bank exports use a decimal comma with
// dot, space or NBSP thousands separators ("1.234,56", "1.234"). Dots and
// spaces are always grouping, never a decimal point, so "1.234" is 1234
// whole units. The result is the unsigned magnitude; the sign is folded in
// by ApplyDirection.
func ParseAmountMinor(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

// ApplyDirection folds the direction into the amount sign: DEBIT amounts are
// negative, CREDIT amounts positive, regardless of the sign on the magnitude.
func ApplyDirection(minor int64, dir domain.Direction) int64 {
	if minor < 0 {
		minor = -minor
	}
	if dir == domain.Debit {
		return -minor
	}
	return minor
}

// ParseDirection maps the source's direction indicator onto Debit/Credit.
// ING exports use "Af" (withdrawal) and "Bij" (deposit); English exports and
// sign characters are accepted too.
func ParseDirection(raw string) (domain.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "af", "debit", "out", "-":
		return domain.Debit, nil
	case "bij", "credit", "in", "+":
		return domain.Credit, nil
	}
	return "", fmt.Errorf("unknown direction indicator %q", raw)
}
