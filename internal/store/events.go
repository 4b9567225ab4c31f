package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// AppendParseEvent records one audit-trail entry. Parse events are
// append-only; nothing updates or deletes them.
func (s *Store) AppendParseEvent(ctx context.Context, ev domain.ParseEvent) error {
	ok := 0
	if ev.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO parse_events (document_id, stage, ok, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ev.DocumentID, string(ev.Stage), ok, ev.Message,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("AppendParseEvent: inserting row: %w", err)
	}
	return nil
}

// ListParseEvents returns the audit trail for one document in insertion
// order.
func (s *Store) ListParseEvents(ctx context.Context, documentID int64) ([]domain.ParseEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, stage, ok, message
		FROM parse_events WHERE document_id = ? ORDER BY id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("ListParseEvents: querying: %w", err)
	}
	defer rows.Close()

	var out []domain.ParseEvent
	for rows.Next() {
		var ev domain.ParseEvent
		var stage string
		var ok int
		if err := rows.Scan(&ev.DocumentID, &stage, &ok, &ev.Message); err != nil {
			return nil, fmt.Errorf("ListParseEvents: scanning row: %w", err)
		}
		ev.Stage = domain.ParseStage(stage)
		ev.OK = ok != 0
		out = append(out, ev)
	}
	return out, rows.Err()
}
