package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// SourceKind identifies which extractor handles a document.
type SourceKind string

const (
	// SourceDelimited is a delimited-text bank export (CSV and friends).
	SourceDelimited SourceKind = "delimited"
	// SourceSpreadsheet is a tabular spreadsheet export (xlsx).
	SourceSpreadsheet SourceKind = "spreadsheet"
	// SourcePageText is unstructured page text, e.g. text extracted from a
	// PDF statement. Parsed heuristically, best effort.
	SourcePageText SourceKind = "pagetext"
)

// KindForPath guesses the source kind from a file extension. Returns false
// when the extension is not one we recognize.
func KindForPath(path string) (SourceKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return SourceDelimited, true
	case ".xlsx":
		// Legacy BIFF .xls is not recognized: the workbook reader handles
		// OOXML only, and routing .xls there just fails at open.
		return SourceSpreadsheet, true
	case ".txt", ".pdf":
		return SourcePageText, true
	}
	return "", false
}

// Document is one ingested statement file. The checksum is the document-level
// dedup key: re-ingesting byte-identical content is a no-op.
type Document struct {
	ID              int64
	Path            string
	Checksum        string // hex SHA-256 over the exact file bytes
	SourceKind      SourceKind
	InstitutionHint string
	ImportedAt      time.Time
}

// ParseStage tags where in the pipeline a parse event was produced.
type ParseStage string

const (
	StageIntake    ParseStage = "intake"
	StageExtract   ParseStage = "extract"
	StageNormalize ParseStage = "normalize"
)

// ParseEvent is one append-only audit record for a document processing step.
// Failed events (OK=false) are counted as warnings in the run summary.
type ParseEvent struct {
	DocumentID int64
	Stage      ParseStage
	OK         bool
	Message    string
}
