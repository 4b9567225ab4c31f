// Package extract houses the three format extractors. Each one turns a
// document's bytes into an ordered list of raw transaction candidates plus
// parse events describing anything it had to skip. Structural problems are
// never fatal: they surface as failed parse events, and the returned error is
// reserved for I/O-level trouble only.
package extract

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// Input is the extractor's view of one document. Data is the full file
// content, already read and checksummed by the orchestrator.
type Input struct {
	DocumentID int64
	Checksum   string
	Path       string
	Kind       domain.SourceKind
	Data       []byte
}

// Extractor produces raw candidates from one document.
type Extractor interface {
	Extract(ctx context.Context, in Input) ([]domain.RawCandidate, []domain.ParseEvent, error)
}

// ForKind selects the extractor for a declared source kind.
func ForKind(kind domain.SourceKind) (Extractor, error) {
	switch kind {
	case domain.SourceDelimited:
		return &Delimited{}, nil
	case domain.SourceSpreadsheet:
		return &Spreadsheet{}, nil
	case domain.SourcePageText:
		return &PageText{}, nil
	}
	return nil, fmt.Errorf("ForKind: no extractor for source kind %q", kind)
}

func failEvent(docID int64, stage domain.ParseStage, format string, args ...interface{}) domain.ParseEvent {
	return domain.ParseEvent{
		DocumentID: docID,
		Stage:      stage,
		OK:         false,
		Message:    fmt.Sprintf(format, args...),
	}
}
