package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// InsertDocumentIfNew records a document unless its checksum is already
// known. Returns the document ID and whether this call created the row.
// The conflict target is the UNIQUE constraint on checksum_sha256, so two
// concurrent ingestions of identical bytes resolve to one row.
func (s *Store) InsertDocumentIfNew(ctx context.Context, doc *domain.Document) (int64, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, checksum_sha256, source_kind, institution_hint, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(checksum_sha256) DO NOTHING`,
		doc.Path, doc.Checksum, string(doc.SourceKind), doc.InstitutionHint,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, false, fmt.Errorf("InsertDocumentIfNew: inserting row: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("InsertDocumentIfNew: rows affected: %w", err)
	}
	if n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("InsertDocumentIfNew: last insert id: %w", err)
		}
		return id, true, nil
	}

	existing, err := s.FindDocumentByChecksum(ctx, doc.Checksum)
	if err != nil {
		return 0, false, fmt.Errorf("InsertDocumentIfNew: reading back: %w", err)
	}
	return existing.ID, false, nil
}

// FindDocumentByChecksum looks a document up by its content checksum.
// Returns nil when the checksum is unknown.
func (s *Store) FindDocumentByChecksum(ctx context.Context, checksum string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, checksum_sha256, source_kind, institution_hint, imported_at
		FROM documents WHERE checksum_sha256 = ?`, checksum)

	var doc domain.Document
	var kind, imported string
	err := row.Scan(&doc.ID, &doc.Path, &doc.Checksum, &kind, &doc.InstitutionHint, &imported)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksum: scanning row: %w", err)
	}
	doc.SourceKind = domain.SourceKind(kind)
	if t, err := time.Parse(timeLayout, imported); err == nil {
		doc.ImportedAt = t
	}
	return &doc, nil
}

// IsKnownDocument reports whether a content checksum has been seen before.
func (s *Store) IsKnownDocument(ctx context.Context, checksum string) (bool, error) {
	doc, err := s.FindDocumentByChecksum(ctx, checksum)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}
