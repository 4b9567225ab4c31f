package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// IngestBatch ingests a set of documents with bounded document-level
// parallelism. Documents are independent units of work; per-document failures
// that are recoverable have already been absorbed into warnings, so an error
// from IngestDocument here is fatal (unreadable file or store failure) and
// cancels the remaining documents. The batch always writes one run summary,
// even when it is cut short.
func (p *Pipeline) IngestBatch(ctx context.Context, inputs []DocInput, concurrency int) (*domain.IngestRun, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	run := &domain.IngestRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, in := range inputs {
		g.Go(func() error {
			stats, err := p.IngestDocument(gctx, in)

			mu.Lock()
			defer mu.Unlock()
			run.DocumentsSeen++
			run.TxSeen += stats.TxSeen
			run.TxNew += stats.TxNew
			run.Warnings += stats.Warnings
			if stats.DocumentNew {
				run.DocumentsNew++
			}

			var docErr *DocumentError
			switch {
			case err == nil:
				return nil
			case errors.As(err, &docErr):
				// Confined to this document: note it and keep the batch going.
				run.Warnings++
				run.Notes += fmt.Sprintf("%s: %v\n", in.URI, docErr.Err)
				p.log.Error().Str("uri", in.URI).Err(docErr.Err).Msg("document failed")
				return nil
			default:
				return err
			}
		})
	}

	batchErr := g.Wait()
	run.FinishedAt = time.Now().UTC()

	if err := p.store.InsertRun(ctx, run); err != nil {
		return run, fmt.Errorf("IngestBatch: writing run summary: %w", err)
	}

	p.log.Info().
		Str("run_id", run.ID).
		Int("documents_seen", run.DocumentsSeen).
		Int("documents_new", run.DocumentsNew).
		Int("tx_seen", run.TxSeen).
		Int("tx_new", run.TxNew).
		Int("warnings", run.Warnings).
		Msg("batch finished")

	return run, batchErr
}
