package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ingest/internal/config"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/store"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "path to the SQLite database")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Open(*dbPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store failed")
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	fmt.Printf("Schema applied to %s\n", *dbPath)
}
