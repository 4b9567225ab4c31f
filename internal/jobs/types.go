// Package jobs defines the asynchronous ingestion job model consumed by the
// worker binary.
package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRetrying  Status = "retrying"
)

// IngestDocumentJob asks the worker to ingest one statement document.
// Because ingestion is idempotent end to end (document checksum, transaction
// fingerprint), a retried or duplicated job is harmless.
type IngestDocumentJob struct {
	JobID string            `json:"job_id"`
	URI   string            `json:"uri"`
	Kind  domain.SourceKind `json:"kind,omitempty"`

	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Handler processes one job. A returned error marks the job failed and
// triggers a retry while attempts remain.
type Handler func(ctx context.Context, job *IngestDocumentJob) error

// Publisher enqueues ingestion jobs.
type Publisher interface {
	Publish(ctx context.Context, job *IngestDocumentJob) error
	Close() error
}

// Consumer drains the queue, calling the handler for each job.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}

// JobStore tracks job state so an operator can inspect what the worker did.
type JobStore interface {
	SaveJob(ctx context.Context, job *IngestDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*IngestDocumentJob, error)
	ListJobs(ctx context.Context, status Status) ([]*IngestDocumentJob, error)
}
