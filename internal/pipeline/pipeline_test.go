package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/fingerprint"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/store"
)

// ingestCSV is a ten-row ING export in which row five has no amount.
const ingestCSV = `Datum,Naam / Omschrijving,Rekening,Tegenrekening,Af Bij,Bedrag (EUR),Mededelingen
20240301,ALBERT HEIJN 1403,NL91ABNA0417164300,,Af,"12,50",Pasvolgnr: 008
20240301,JUMBO UTRECHT,NL91ABNA0417164300,,Af,"31,20",Term: X93KL1
20240302,Salaris maart,NL91ABNA0417164300,NL18RABO0123459876,Bij,"2500,00",Salaris
20240303,NS GROEP,NL91ABNA0417164300,,Af,"4,60",Transactie: 99A1
20240304,BROKEN ROW,NL91ABNA0417164300,,Af,,Mededeling zonder bedrag
20240305,LIDL 881 UTRECHT NLD,NL91ABNA0417164300,,Af,"18,95",Datum/Tijd: 05-03-2024 18:11
20240306,Verzekering premie,NL91ABNA0417164300,NL20INGB0001234567,Af,"104,32",Valutadatum: 07-03-2024
20240307,BOL.COM,NL91ABNA0417164300,,Af,"59,99",Bestelling 77812
20240308,Spaarrekening,NL91ABNA0417164300,NL91ABNA0417164301,Af,"200,00",Apple Pay
20240309,Teruggave energie,NL91ABNA0417164300,NL55TRIO0198765432,Bij,"43,17",Correctie
`

// overlapCSV repeats two rows of ingestCSV with reordered columns and adds
// one row that was not in it.
const overlapCSV = `Af Bij,Datum,Bedrag (EUR),Naam / Omschrijving,Rekening,Tegenrekening,Mededelingen
Af,20240301,"12,50",ALBERT HEIJN 1403,NL91ABNA0417164300,,Pasvolgnr: 008
Af,20240303,"4,60",NS GROEP,NL91ABNA0417164300,,Transactie: 99A1
Af,20240310,"7,25",KIOSK CENTRAAL,NL91ABNA0417164300,,
`

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()

	log := logger.NewWithWriter(nil)
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return New(st, Options{}, log), st
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestBatch(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()
	dir := t.TempDir()

	inputs := []DocInput{
		{URI: writeFile(t, dir, "march.csv", ingestCSV)},
		// Byte-identical content under another name: same document.
		{URI: writeFile(t, dir, "march-copy.csv", ingestCSV)},
		// Page text with no recognizable transaction blocks.
		{URI: writeFile(t, dir, "notes.txt", "Overzicht zonder transacties.\nGeen bedragen hier.\n")},
	}

	run, err := p.IngestBatch(ctx, inputs, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, run.DocumentsSeen)
	assert.Equal(t, 2, run.DocumentsNew)
	assert.Equal(t, 9, run.TxSeen)
	assert.Equal(t, 9, run.TxNew)
	// One malformed row plus one unparseable text document.
	assert.Equal(t, 2, run.Warnings)
	assert.False(t, run.FinishedAt.IsZero())

	n, err := st.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	// Re-running the same batch is a no-op: every checksum is known.
	rerun, err := p.IngestBatch(ctx, inputs, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, rerun.DocumentsSeen)
	assert.Equal(t, 0, rerun.DocumentsNew)
	assert.Equal(t, 0, rerun.TxSeen)
	assert.Equal(t, 0, rerun.TxNew)
	assert.Equal(t, 0, rerun.Warnings)

	n, err = st.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestIngestDocument_OverlappingStatement(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := p.IngestDocument(ctx, DocInput{URI: writeFile(t, dir, "march.csv", ingestCSV)})
	require.NoError(t, err)

	// A later export covering part of the same period: the repeated rows,
	// despite the reordered columns, fingerprint identically.
	stats, err := p.IngestDocument(ctx, DocInput{URI: writeFile(t, dir, "overlap.csv", overlapCSV)})
	require.NoError(t, err)

	assert.True(t, stats.DocumentNew)
	assert.Equal(t, 3, stats.TxSeen)
	assert.Equal(t, 1, stats.TxNew)
	assert.Equal(t, 0, stats.Warnings, "duplicates are not warnings")

	n, err := st.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestIngestBatch_MissingFileIsConfined(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()
	dir := t.TempDir()

	inputs := []DocInput{
		{URI: filepath.Join(dir, "does-not-exist.csv")},
		{URI: writeFile(t, dir, "march.csv", ingestCSV)},
	}

	run, err := p.IngestBatch(ctx, inputs, 1)
	require.NoError(t, err, "an unreadable document must not abort the batch")

	assert.Equal(t, 2, run.DocumentsSeen)
	assert.Equal(t, 1, run.DocumentsNew)
	assert.Equal(t, 9, run.TxNew)
	// One note for the missing file, one warning for the malformed row.
	assert.Equal(t, 2, run.Warnings)
	assert.Contains(t, run.Notes, "does-not-exist.csv")
}

func TestIngestDocument_UnknownKind(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()

	_, err := p.IngestDocument(context.Background(), DocInput{
		URI: writeFile(t, dir, "statement.dat", "binary-ish"),
	})
	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.True(t, strings.Contains(docErr.Error(), "statement.dat"))
}

func TestIngestDocument_PersistsParseEvents(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := p.IngestDocument(ctx, DocInput{URI: writeFile(t, dir, "march.csv", ingestCSV)})
	require.NoError(t, err)

	doc, err := st.FindDocumentByChecksum(ctx, fingerprint.Content([]byte(ingestCSV)))
	require.NoError(t, err)
	require.NotNil(t, doc)

	events, err := st.ListParseEvents(ctx, doc.ID)
	require.NoError(t, err)

	var stages []domain.ParseStage
	failed := 0
	for _, ev := range events {
		stages = append(stages, ev.Stage)
		if !ev.OK {
			failed++
		}
	}
	assert.Contains(t, stages, domain.StageIntake)
	assert.Contains(t, stages, domain.StageNormalize)
	assert.Equal(t, 1, failed, "exactly the malformed row is recorded as failed")
}
