// Package store is the SQLite-backed historical store: raw processed records,
// aggregated SKU year ranges and masked VIN prefix frequencies.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	maxRetries = 3
	retryDelay = 500 * time.Millisecond
)

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the store at path. With rebuild set, any existing
// database file is removed first so a processing run always starts from a
// clean slate and can never mix in stale rows.
func Open(path string, rebuild bool, logger zerolog.Logger) (*Store, error) {
	if rebuild {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale database: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// withRetry runs fn, retrying on lock contention with a fixed backoff up to
// maxRetries attempts, then surfaces the last error as fatal to the caller.
func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isBusy(err) || attempt == maxRetries {
			break
		}
		s.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("store busy, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
