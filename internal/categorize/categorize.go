// Package categorize is the explicit category enrichment pass. Ingestion
// itself never guesses categories; this pass applies keyword mapping rules to
// transactions that have none, and back-fills merchants the same way. It is
// idempotent: re-running it changes nothing already categorized.
package categorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/normalize"
)

// Rule maps a keyword found in a transaction's description or counterparty
// name to a category code. Rules are tried in order; the first match wins.
type Rule struct {
	Keyword string
	Code    string
	Label   string
}

// DefaultRules is the built-in mapping for the supported Dutch exports.
// Keyword matching is case-insensitive on the folded text.
var DefaultRules = []Rule{
	{Keyword: "albert heijn", Code: "GROCERIES", Label: "Groceries"},
	{Keyword: "jumbo", Code: "GROCERIES", Label: "Groceries"},
	{Keyword: "lidl", Code: "GROCERIES", Label: "Groceries"},
	{Keyword: "action", Code: "HOUSEHOLD", Label: "Household"},
	{Keyword: "huur", Code: "RENT", Label: "Rent"},
	{Keyword: "vgz", Code: "HEALTH", Label: "Health"},
	{Keyword: "verzekering", Code: "INSURANCE", Label: "Insurance"},
	{Keyword: "creditcard", Code: "CREDIT_CARD", Label: "Credit card"},
	{Keyword: "betaalpakket", Code: "BANK_FEES", Label: "Bank fees"},
	{Keyword: "rente", Code: "INTEREST", Label: "Interest"},
	{Keyword: "amazon", Code: "SHOPPING", Label: "Shopping"},
	{Keyword: "ns groep", Code: "TRANSPORT", Label: "Transport"},
}

// Store is the slice of the persistence layer enrichment needs.
type Store interface {
	ListUncategorized(ctx context.Context) ([]domain.Transaction, error)
	EnsureCategory(ctx context.Context, code, label string) (int64, error)
	SetTransactionCategory(ctx context.Context, txID, categoryID int64) error
	SetMerchantCategory(ctx context.Context, merchantID, categoryID int64) error
}

// Stats summarizes one enrichment pass.
type Stats struct {
	TxUpdated        int
	MerchantsUpdated int
}

// Enricher applies mapping rules to uncategorized transactions.
type Enricher struct {
	store Store
	rules []Rule
	log   zerolog.Logger
}

// New creates an enricher. Passing nil rules selects DefaultRules.
func New(store Store, rules []Rule, log zerolog.Logger) *Enricher {
	if rules == nil {
		rules = DefaultRules
	}
	return &Enricher{
		store: store,
		rules: rules,
		log:   log.With().Str("component", "categorize").Logger(),
	}
}

// Run categorizes every uncategorized transaction whose text matches a rule.
// The matched category is also back-filled onto the transaction's merchant
// when the merchant has none; merchants with a category keep theirs.
func (e *Enricher) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	txs, err := e.store.ListUncategorized(ctx)
	if err != nil {
		return stats, fmt.Errorf("Run: listing transactions: %w", err)
	}

	categoryIDs := map[string]int64{}
	for _, tx := range txs {
		rule, ok := e.match(tx)
		if !ok {
			continue
		}

		categoryID, cached := categoryIDs[rule.Code]
		if !cached {
			categoryID, err = e.store.EnsureCategory(ctx, rule.Code, rule.Label)
			if err != nil {
				return stats, fmt.Errorf("Run: ensuring category %s: %w", rule.Code, err)
			}
			categoryIDs[rule.Code] = categoryID
		}

		if err := e.store.SetTransactionCategory(ctx, tx.ID, categoryID); err != nil {
			return stats, fmt.Errorf("Run: %w", err)
		}
		stats.TxUpdated++

		if tx.MerchantID != nil {
			if err := e.store.SetMerchantCategory(ctx, *tx.MerchantID, categoryID); err != nil {
				return stats, fmt.Errorf("Run: %w", err)
			}
			stats.MerchantsUpdated++
		}
	}

	e.log.Info().
		Int("tx_updated", stats.TxUpdated).
		Int("merchants_updated", stats.MerchantsUpdated).
		Msg("enrichment pass finished")
	return stats, nil
}

func (e *Enricher) match(tx domain.Transaction) (Rule, bool) {
	base := normalize.Fold(tx.Description + " " + tx.CounterpartyName)
	for _, rule := range e.rules {
		if strings.Contains(base, rule.Keyword) {
			return rule, true
		}
	}
	return Rule{}, false
}
