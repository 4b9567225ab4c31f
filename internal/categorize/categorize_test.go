package categorize

import (
	"context"
	"testing"

	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/logger"
)

type mockStore struct {
	uncategorized []domain.Transaction

	categories         map[string]int64
	nextCategoryID     int64
	txCategories       map[int64]int64
	merchantCategories map[int64]int64
}

func newMockStore(txs ...domain.Transaction) *mockStore {
	return &mockStore{
		uncategorized:      txs,
		categories:         map[string]int64{},
		nextCategoryID:     1,
		txCategories:       map[int64]int64{},
		merchantCategories: map[int64]int64{},
	}
}

func (m *mockStore) ListUncategorized(ctx context.Context) ([]domain.Transaction, error) {
	return m.uncategorized, nil
}

func (m *mockStore) EnsureCategory(ctx context.Context, code, label string) (int64, error) {
	if id, ok := m.categories[code]; ok {
		return id, nil
	}
	id := m.nextCategoryID
	m.nextCategoryID++
	m.categories[code] = id
	return id, nil
}

func (m *mockStore) SetTransactionCategory(ctx context.Context, txID, categoryID int64) error {
	m.txCategories[txID] = categoryID
	return nil
}

func (m *mockStore) SetMerchantCategory(ctx context.Context, merchantID, categoryID int64) error {
	if _, ok := m.merchantCategories[merchantID]; !ok {
		m.merchantCategories[merchantID] = categoryID
	}
	return nil
}

func tx(id int64, description string, merchantID *int64) domain.Transaction {
	return domain.Transaction{ID: id, Description: description, MerchantID: merchantID}
}

func TestEnricherRun(t *testing.T) {
	merchantID := int64(7)
	store := newMockStore(
		tx(1, "ALBERT HEIJN 1403", &merchantID),
		tx(2, "Jumbo Utrecht", nil),
		tx(3, "Onbekende winkel", nil),
		tx(4, "Premie VERZEKERING maart", nil),
	)

	e := New(store, nil, logger.NewWithWriter(nil))
	stats, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.TxUpdated != 3 {
		t.Errorf("TxUpdated = %d, want 3", stats.TxUpdated)
	}
	if stats.MerchantsUpdated != 1 {
		t.Errorf("MerchantsUpdated = %d, want 1", stats.MerchantsUpdated)
	}

	groceries, ok := store.categories["GROCERIES"]
	if !ok {
		t.Fatal("GROCERIES category was not created")
	}
	if store.txCategories[1] != groceries || store.txCategories[2] != groceries {
		t.Errorf("grocery transactions categorized as %v, want %d", store.txCategories, groceries)
	}
	if _, ok := store.txCategories[3]; ok {
		t.Error("unmatched transaction got a category")
	}
	if store.merchantCategories[merchantID] != groceries {
		t.Errorf("merchant category = %d, want %d", store.merchantCategories[merchantID], groceries)
	}
}

func TestEnricherFirstRuleWins(t *testing.T) {
	store := newMockStore(tx(1, "Jumbo creditcard betaling", nil))

	e := New(store, nil, logger.NewWithWriter(nil))
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := store.categories["GROCERIES"]; !ok {
		t.Error("expected the earlier GROCERIES rule to win over CREDIT_CARD")
	}
	if _, ok := store.categories["CREDIT_CARD"]; ok {
		t.Error("CREDIT_CARD rule matched despite an earlier match")
	}
}

func TestEnricherCustomRules(t *testing.T) {
	store := newMockStore(tx(1, "Boodschappen bij de marqt", nil))

	rules := []Rule{{Keyword: "marqt", Code: "GROCERIES", Label: "Groceries"}}
	e := New(store, rules, logger.NewWithWriter(nil))
	stats, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.TxUpdated != 1 {
		t.Errorf("TxUpdated = %d, want 1", stats.TxUpdated)
	}
}

func TestEnricherNothingToDo(t *testing.T) {
	store := newMockStore()

	e := New(store, nil, logger.NewWithWriter(nil))
	stats, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.TxUpdated != 0 || stats.MerchantsUpdated != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
}
