// Package pipeline sequences ingestion: content-identity check, extraction,
// canonicalization, identity resolution, merchant resolution, persistence.
// One failed candidate never stops the rest of its document, and one failed
// document never stops the batch; only unreadable bytes or store failures
// propagate as errors.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/extract"
	"github.com/dvloznov/statement-ingest/internal/fingerprint"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/merchant"
	"github.com/dvloznov/statement-ingest/internal/normalize"
	"github.com/dvloznov/statement-ingest/internal/source"
	"github.com/dvloznov/statement-ingest/internal/store"
)

// Options tune per-document behavior.
type Options struct {
	// Institution is attached to lazily created accounts and to documents
	// as a hint. Defaults to "ING", matching the supported export formats.
	Institution string

	// PageTextTimeout bounds the page-text extractor's heuristic scan per
	// document. Zero means no limit.
	PageTextTimeout time.Duration
}

// DocInput names one document to ingest: a path or gs:// URI plus its
// declared source kind. Kind may be empty, in which case it is detected from
// the file extension.
type DocInput struct {
	URI  string
	Kind domain.SourceKind
}

// DocStats counts one document's contribution to the run summary.
type DocStats struct {
	DocumentNew bool
	TxSeen      int
	TxNew       int
	Warnings    int
}

// DocumentError is a fatal error confined to one document, e.g. unreadable
// bytes. The batch runner records it and moves on; only store-level failures
// abort the whole batch.
type DocumentError struct {
	URI string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.URI, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Pipeline ingests documents into the store.
type Pipeline struct {
	store    *store.Store
	resolver *merchant.Resolver
	opts     Options
	log      zerolog.Logger
}

// New creates a pipeline over the given store.
func New(st *store.Store, opts Options, log zerolog.Logger) *Pipeline {
	if opts.Institution == "" {
		opts.Institution = "ING"
	}
	return &Pipeline{
		store:    st,
		resolver: merchant.NewResolver(st, log),
		opts:     opts,
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// IngestDocument runs one document through the full state machine:
// fingerprint check, extraction, per-candidate normalization and persistence.
// A known checksum short-circuits to a no-op (the document still counts as
// seen). The returned error is fatal only: unreadable bytes or a store
// failure.
func (p *Pipeline) IngestDocument(ctx context.Context, in DocInput) (DocStats, error) {
	var stats DocStats

	kind := in.Kind
	if kind == "" {
		detected, ok := domain.KindForPath(in.URI)
		if !ok {
			return stats, &DocumentError{URI: in.URI, Err: fmt.Errorf("cannot detect source kind")}
		}
		kind = detected
	}

	data, err := source.Fetch(ctx, in.URI)
	if err != nil {
		return stats, &DocumentError{URI: in.URI, Err: err}
	}

	checksum := fingerprint.Content(data)
	log := logger.ForDocument(p.log, checksum, in.URI)

	docID, isNew, err := p.store.InsertDocumentIfNew(ctx, &domain.Document{
		Path:            in.URI,
		Checksum:        checksum,
		SourceKind:      kind,
		InstitutionHint: p.opts.Institution,
	})
	if err != nil {
		return stats, fmt.Errorf("IngestDocument: %w", err)
	}
	if !isNew {
		log.Info().Msg("document already ingested, skipping")
		return stats, nil
	}
	stats.DocumentNew = true

	if err := p.store.AppendParseEvent(ctx, domain.ParseEvent{
		DocumentID: docID,
		Stage:      domain.StageIntake,
		OK:         true,
		Message:    fmt.Sprintf("new document imported (%s, %d bytes)", kind, len(data)),
	}); err != nil {
		return stats, fmt.Errorf("IngestDocument: %w", err)
	}

	extractor, err := extract.ForKind(kind)
	if err != nil {
		return stats, fmt.Errorf("IngestDocument: %w", err)
	}

	extractCtx := ctx
	if kind == domain.SourcePageText && p.opts.PageTextTimeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, p.opts.PageTextTimeout)
		defer cancel()
	}

	candidates, events, err := extractor.Extract(extractCtx, extract.Input{
		DocumentID: docID,
		Checksum:   checksum,
		Path:       in.URI,
		Kind:       kind,
		Data:       data,
	})
	if err != nil {
		return stats, fmt.Errorf("IngestDocument: extracting: %w", err)
	}

	for _, ev := range events {
		if !ev.OK {
			stats.Warnings++
			log.Warn().Str("stage", string(ev.Stage)).Msg(ev.Message)
		}
		if err := p.store.AppendParseEvent(ctx, ev); err != nil {
			return stats, fmt.Errorf("IngestDocument: %w", err)
		}
	}

	for _, c := range candidates {
		outcome, err := p.persistCandidate(ctx, docID, c, log)
		if err != nil {
			return stats, fmt.Errorf("IngestDocument: %w", err)
		}
		switch outcome {
		case candidateInserted:
			stats.TxSeen++
			stats.TxNew++
		case candidateDuplicate:
			stats.TxSeen++
		case candidateRejected:
			stats.Warnings++
		}
	}

	if err := p.store.AppendParseEvent(ctx, domain.ParseEvent{
		DocumentID: docID,
		Stage:      domain.StageNormalize,
		OK:         true,
		Message:    fmt.Sprintf("candidates seen=%d new=%d warnings=%d", stats.TxSeen, stats.TxNew, stats.Warnings),
	}); err != nil {
		return stats, fmt.Errorf("IngestDocument: %w", err)
	}

	log.Info().
		Int("tx_seen", stats.TxSeen).
		Int("tx_new", stats.TxNew).
		Int("warnings", stats.Warnings).
		Msg("document ingested")
	return stats, nil
}

type candidateOutcome int

const (
	candidateInserted candidateOutcome = iota
	candidateDuplicate
	candidateRejected
)

// persistCandidate canonicalizes one candidate and runs the identity and
// merchant steps. Rejections are recorded as failed parse events and
// absorbed; only store failures return an error.
func (p *Pipeline) persistCandidate(ctx context.Context, docID int64, c domain.RawCandidate, log zerolog.Logger) (candidateOutcome, error) {
	fields, err := normalize.Canonicalize(c)
	if err != nil {
		log.Warn().Int("index", c.Index).Err(err).Msg("candidate rejected")
		if evErr := p.store.AppendParseEvent(ctx, domain.ParseEvent{
			DocumentID: docID,
			Stage:      domain.StageNormalize,
			OK:         false,
			Message:    fmt.Sprintf("candidate %d: %v", c.Index, err),
		}); evErr != nil {
			return candidateRejected, evErr
		}
		return candidateRejected, nil
	}

	accountID, err := p.store.EnsureAccount(ctx, domain.Account{
		Institution: p.opts.Institution,
		IBAN:        fields.AccountRef,
		Currency:    fields.Currency,
	})
	if err != nil {
		return candidateRejected, err
	}

	merchantID, categoryID, err := p.resolver.Resolve(ctx, fields.CounterpartyName)
	if err != nil {
		return candidateRejected, err
	}

	tx := &domain.Transaction{
		AccountID:         accountID,
		DocumentID:        docID,
		Fingerprint:       fingerprint.Transaction(fields),
		BookingDate:       fields.BookingDate,
		ValueDate:         fields.ValueDate,
		AmountMinor:       fields.AmountMinor,
		Currency:          fields.Currency,
		Direction:         fields.Direction,
		CounterpartyName:  fields.CounterpartyName,
		CounterpartyIBAN:  fields.CounterpartyIBAN,
		Description:       fields.RawDescription,
		MerchantID:        merchantID,
		CategoryID:        categoryID,
		BalanceAfterMinor: fields.BalanceAfterMinor,
	}

	result, err := p.store.InsertTransactionIfNew(ctx, tx)
	if err != nil {
		return candidateRejected, err
	}
	if result == store.Duplicate {
		// Expected on re-ingestion of overlapping statements. Not a warning.
		log.Debug().Int("index", c.Index).Msg("duplicate fingerprint, skipped")
		return candidateDuplicate, nil
	}
	return candidateInserted, nil
}
