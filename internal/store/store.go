// Package store is the SQLite persistence layer. Every dedup-sensitive write
// (document, transaction, merchant, account) is a single conditional INSERT
// against a uniqueness constraint, so concurrent ingestion runs stay correct
// without any read-check-then-write step.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is the ISO-8601 form used for every stored timestamp.
const timeLayout = "2006-01-02T15:04:05Z07:00"

// Store wraps the database connection and exposes the repositories.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (and creates, if needed) the SQLite database at dbPath.
// WAL mode is enabled for concurrent readers during ingestion.
func Open(dbPath string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Open: creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("Open: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("Open: pinging database: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With().Str("component", "store").Logger(),
	}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("Migrate: applying schema: %w", err)
	}
	return nil
}
