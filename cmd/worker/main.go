package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-ingest/internal/config"
	"github.com/dvloznov/statement-ingest/internal/jobs"
	"github.com/dvloznov/statement-ingest/internal/jobs/inmemory"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/pipeline"
	"github.com/dvloznov/statement-ingest/internal/store"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store failed")
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	if err := st.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	p := pipeline.New(st, pipeline.Options{
		Institution:     cfg.Institution,
		PageTextTimeout: cfg.PageTextTimeout,
	}, log)

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(cfg.QueueSize, cfg.Concurrency, jobStore)

	handler := func(ctx context.Context, job *jobs.IngestDocumentJob) error {
		stats, err := p.IngestDocument(ctx, pipeline.DocInput{URI: job.URI, Kind: job.Kind})
		if err != nil {
			return err
		}
		log.Info().
			Str("job_id", job.JobID).
			Str("uri", job.URI).
			Bool("document_new", stats.DocumentNew).
			Int("tx_new", stats.TxNew).
			Int("warnings", stats.Warnings).
			Msg("job finished")
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("starting queue failed")
	}

	log.Info().Msg("worker started")

	// Watch a drop directory: any recognized statement file placed there is
	// published as an ingestion job. Re-publishing the same file is safe,
	// ingestion is idempotent.
	go watchDropDir(ctx, queue, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("queue did not drain in time")
	}
}
