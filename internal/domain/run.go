package domain

import (
	"time"
)

// IngestRun is the write-once summary of one ingestion batch. Warnings is
// the number of failed parse events recorded during the run; the parse_events
// table is the detail behind it.
type IngestRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	DocumentsSeen int
	DocumentsNew  int
	TxSeen        int
	TxNew         int
	Warnings      int

	Notes string
}
