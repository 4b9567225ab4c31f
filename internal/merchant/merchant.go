// Package merchant derives stable merchant keys from counterparty text and
// resolves them to merchant entities.
package merchant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-ingest/internal/normalize"
)

// noisePatterns strip the per-payment fragments that card processors append
// to a counterparty name: terminal identifiers, card sequence numbers and
// trailing numeric run codes, plus the location/country suffix many acquirers
// tack on ("ALBERT HEIJN 1403 AMS NLD").
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bterm:\s*\S+`),
	regexp.MustCompile(`(?i)\bpasvolgnr:?\s*\d+`),
	regexp.MustCompile(`(?i)\b[a-z]{3,}\s+[a-z]{3}$`), // "AMSTERDAM NLD" style suffix
	regexp.MustCompile(`\s+\d{5,}$`),                  // trailing run code; short store numbers stay
}

// Key derives the normalized merchant key from an already-canonicalized
// counterparty name. Distinct from the display name: two sightings of the
// same merchant with different terminal fragments share one key.
func Key(name string) string {
	k := normalize.Fold(name)
	for changed := true; changed; {
		before := k
		for _, re := range noisePatterns {
			k = strings.TrimSpace(re.ReplaceAllString(k, ""))
		}
		changed = k != before
	}
	return k
}

// Store is the slice of the persistence layer the resolver needs.
type Store interface {
	EnsureMerchant(ctx context.Context, normalizedKey, displayName string) (int64, error)
	MerchantCategory(ctx context.Context, merchantID int64) (*int64, error)
}

// Resolver maps counterparty names to merchant IDs, creating merchants
// lazily. Resolution is idempotent: the store guards creation with the
// uniqueness constraint on the normalized key.
type Resolver struct {
	store Store
	log   zerolog.Logger
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store, log zerolog.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log.With().Str("component", "merchant").Logger(),
	}
}

// Resolve returns the merchant ID for a counterparty name, plus the
// merchant's category when one has been assigned (so new transactions can
// inherit it). Names that normalize to an empty key resolve to no merchant.
func (r *Resolver) Resolve(ctx context.Context, counterpartyName string) (*int64, *int64, error) {
	display := normalize.Text(counterpartyName)
	key := Key(display)
	if key == "" {
		return nil, nil, nil
	}

	id, err := r.store.EnsureMerchant(ctx, key, display)
	if err != nil {
		return nil, nil, fmt.Errorf("Resolve: ensuring merchant %q: %w", key, err)
	}

	categoryID, err := r.store.MerchantCategory(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("Resolve: reading merchant category: %w", err)
	}

	r.log.Debug().Str("key", key).Int64("merchant_id", id).Msg("resolved merchant")
	return &id, categoryID, nil
}
