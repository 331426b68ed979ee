// Package sqlite provides the default SQLite-backed store. Embeddings are
// stored as JSON array text, the format the attendance database has always
// used, so existing databases keep working.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/satriadp/hadirku/internal/config"
)

// Store is a SQLite-backed implementation of store.Store.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the SQLite database at cfg.URL.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database path is required")
	}

	// foreign_keys must be enabled per connection; busy_timeout lets
	// concurrent attendance stations wait for the writer instead of
	// failing with SQLITE_BUSY.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", cfg.URL)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; keeping one connection serializes
	// writes at the pool level as well.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the identities and attendance tables if they do not exist.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS identities (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			display_name TEXT NOT NULL,
			external_ref TEXT NOT NULL DEFAULT '',
			embedding    TEXT NOT NULL,
			created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create identities table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			identity_id INTEGER NOT NULL,
			ts          TIMESTAMP NOT NULL,
			FOREIGN KEY (identity_id) REFERENCES identities(id)
		)`); err != nil {
		return fmt.Errorf("create attendance_events table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS attendance_events_ts_idx
		ON attendance_events(ts DESC)`); err != nil {
		return fmt.Errorf("create attendance_events index: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}
