// Package config loads runtime configuration from the environment, with
// optional .env support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the knobs shared by the CLI and the worker.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string

	// Institution is attached to documents and lazily created accounts.
	Institution string

	// Concurrency bounds document-level parallelism in a batch.
	Concurrency int

	// PageTextTimeout bounds the page-text extractor's heuristic scan.
	PageTextTimeout time.Duration

	// QueueSize is the worker's in-memory job queue buffer.
	QueueSize int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; missing keys fall back to
// defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DBPath:          getString("STATEMENT_DB", "data/statements.db"),
		Institution:     getString("STATEMENT_INSTITUTION", "ING"),
		Concurrency:     getInt("STATEMENT_CONCURRENCY", 4),
		PageTextTimeout: getDuration("STATEMENT_PAGETEXT_TIMEOUT", 30*time.Second),
		QueueSize:       getInt("STATEMENT_QUEUE_SIZE", 100),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
