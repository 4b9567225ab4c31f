package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dvloznov/statement-ingest/internal/categorize"
	"github.com/dvloznov/statement-ingest/internal/config"
	"github.com/dvloznov/statement-ingest/internal/domain"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/pipeline"
	"github.com/dvloznov/statement-ingest/internal/store"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "path to the SQLite database")
	kind := flag.String("kind", "", "declared source kind (delimited|spreadsheet|pagetext); detected from extension when empty")
	concurrency := flag.Int("concurrency", cfg.Concurrency, "number of documents ingested in parallel")
	enrich := flag.Bool("enrich", false, "run the category enrichment pass after ingestion")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ingest [flags] <statement-file-or-gs-uri>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := logger.WithContext(context.Background(), log)

	st, err := store.Open(*dbPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store failed")
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	inputs := make([]pipeline.DocInput, 0, len(files))
	for _, f := range files {
		inputs = append(inputs, pipeline.DocInput{URI: f, Kind: domain.SourceKind(*kind)})
	}

	p := pipeline.New(st, pipeline.Options{
		Institution:     cfg.Institution,
		PageTextTimeout: cfg.PageTextTimeout,
	}, log)

	run, err := p.IngestBatch(ctx, inputs, *concurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	if *enrich {
		enricher := categorize.New(st, nil, log)
		if _, err := enricher.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("enrichment failed")
		}
	}

	fmt.Printf("Run %s: documents seen=%d new=%d, transactions seen=%d new=%d, warnings=%d\n",
		run.ID, run.DocumentsSeen, run.DocumentsNew, run.TxSeen, run.TxNew, run.Warnings)
}
