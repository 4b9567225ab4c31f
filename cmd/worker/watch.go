package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/jobs"
)

const dropDirEnv = "STATEMENT_DROP_DIR"

// watchDropDir polls a directory for statement files and publishes one job
// per recognized file. Files already ingested are skipped by the pipeline's
// checksum check, so the poll loop needs no bookkeeping of its own.
func watchDropDir(ctx context.Context, publisher jobs.Publisher, log zerolog.Logger) {
	dir := os.Getenv(dropDirEnv)
	if dir == "" {
		log.Info().Msgf("%s not set, drop-directory watch disabled", dropDirEnv)
		return
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("reading drop directory failed")
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if _, ok := domain.KindForPath(path); !ok {
				continue
			}
			if err := publisher.Publish(ctx, &jobs.IngestDocumentJob{URI: path}); err != nil {
				log.Error().Err(err).Str("path", path).Msg("publishing job failed")
			}
		}
	}
}
