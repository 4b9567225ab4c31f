package store

import (
	"context"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.NewWithWriter(nil))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestInsertDocumentIfNew(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	doc := &domain.Document{
		Path:       "statements/march.csv",
		Checksum:   "abc123",
		SourceKind: domain.SourceDelimited,
	}

	id1, isNew, err := st.InsertDocumentIfNew(ctx, doc)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Positive(t, id1)

	// Same checksum under a different path is still the same document.
	id2, isNew, err := st.InsertDocumentIfNew(ctx, &domain.Document{
		Path:       "statements/march-copy.csv",
		Checksum:   "abc123",
		SourceKind: domain.SourceDelimited,
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, id1, id2)

	known, err := st.IsKnownDocument(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = st.IsKnownDocument(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, known)
}

func testTransaction(accountID, docID int64, fp string) *domain.Transaction {
	return &domain.Transaction{
		AccountID:   accountID,
		DocumentID:  docID,
		Fingerprint: fp,
		BookingDate: civil.Date{Year: 2024, Month: 3, Day: 2},
		AmountMinor: -1250,
		Currency:    "EUR",
		Direction:   domain.Debit,
		Description: "ALBERT HEIJN 1403",
	}
}

func TestInsertTransactionIfNew(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	docID, _, err := st.InsertDocumentIfNew(ctx, &domain.Document{Path: "a.csv", Checksum: "c1", SourceKind: domain.SourceDelimited})
	require.NoError(t, err)
	accountID, err := st.EnsureAccount(ctx, domain.Account{Institution: "ING", IBAN: "NL91ABNA0417164300", Currency: "EUR"})
	require.NoError(t, err)

	result, err := st.InsertTransactionIfNew(ctx, testTransaction(accountID, docID, "fp-1"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, result)

	// A fingerprint collision is the duplicate outcome, not an error.
	result, err = st.InsertTransactionIfNew(ctx, testTransaction(accountID, docID, "fp-1"))
	require.NoError(t, err)
	assert.Equal(t, Duplicate, result)

	result, err = st.InsertTransactionIfNew(ctx, testTransaction(accountID, docID, "fp-2"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, result)

	n, err := st.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEnsureAccount(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	acc := domain.Account{Institution: "ING", IBAN: "NL91ABNA0417164300", Currency: "EUR"}
	id1, err := st.EnsureAccount(ctx, acc)
	require.NoError(t, err)
	id2, err := st.EnsureAccount(ctx, acc)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	other, err := st.EnsureAccount(ctx, domain.Account{Institution: "ING", IBAN: "NL18RABO0123459876", Currency: "EUR"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, other)
}

func TestEnsureMerchant(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id1, err := st.EnsureMerchant(ctx, "albert heijn 1403", "ALBERT HEIJN 1403")
	require.NoError(t, err)

	// Second sighting with a different display name resolves to the same
	// merchant and does not overwrite the first-seen name.
	id2, err := st.EnsureMerchant(ctx, "albert heijn 1403", "AH 1403 Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	category, err := st.MerchantCategory(ctx, id1)
	require.NoError(t, err)
	assert.Nil(t, category, "new merchants carry no category")
}

func TestSetMerchantCategory_NoSilentOverwrite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	merchantID, err := st.EnsureMerchant(ctx, "jumbo", "JUMBO")
	require.NoError(t, err)
	groceries, err := st.EnsureCategory(ctx, "GROCERIES", "Groceries")
	require.NoError(t, err)
	household, err := st.EnsureCategory(ctx, "HOUSEHOLD", "Household")
	require.NoError(t, err)

	require.NoError(t, st.SetMerchantCategory(ctx, merchantID, groceries))
	// A later heuristic must not replace the assigned category.
	require.NoError(t, st.SetMerchantCategory(ctx, merchantID, household))

	got, err := st.MerchantCategory(ctx, merchantID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, groceries, *got)
}

func TestCategories(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id1, err := st.EnsureCategory(ctx, "RENT", "Rent")
	require.NoError(t, err)
	id2, err := st.EnsureCategory(ctx, "RENT", "Rent again")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	cat, err := st.FindCategoryByCode(ctx, "RENT")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "Rent", cat.Label)

	missing, err := st.FindCategoryByCode(ctx, "UNMAPPED")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := st.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestParseEventsAndRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	docID, _, err := st.InsertDocumentIfNew(ctx, &domain.Document{Path: "a.csv", Checksum: "c1", SourceKind: domain.SourceDelimited})
	require.NoError(t, err)

	require.NoError(t, st.AppendParseEvent(ctx, domain.ParseEvent{DocumentID: docID, Stage: domain.StageIntake, OK: true, Message: "new document"}))
	require.NoError(t, st.AppendParseEvent(ctx, domain.ParseEvent{DocumentID: docID, Stage: domain.StageExtract, OK: false, Message: "row 2: missing amount"}))

	events, err := st.ListParseEvents(ctx, docID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].OK)
	assert.False(t, events[1].OK)
	assert.Equal(t, domain.StageExtract, events[1].Stage)

	run := &domain.IngestRun{ID: "run-1", DocumentsSeen: 3, DocumentsNew: 2, TxSeen: 9, TxNew: 9, Warnings: 2}
	require.NoError(t, st.InsertRun(ctx, run))
}
