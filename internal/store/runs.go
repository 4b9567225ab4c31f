package store

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// InsertRun writes the summary of a finished ingestion batch. One row per
// batch, write-once at completion.
func (s *Store) InsertRun(ctx context.Context, run *domain.IngestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (
			id, started_at, finished_at, documents_seen, documents_new,
			tx_seen, tx_new, warnings, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.DocumentsSeen, run.DocumentsNew,
		run.TxSeen, run.TxNew, run.Warnings, run.Notes,
	)
	if err != nil {
		return fmt.Errorf("InsertRun: inserting row: %w", err)
	}
	return nil
}
