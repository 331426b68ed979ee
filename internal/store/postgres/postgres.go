// Package postgres provides a PostgreSQL-backed store using a pgvector
// column for embeddings, for deployments that already run Postgres.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/satriadp/hadirku/internal/config"
)

// Store is a PostgreSQL-backed implementation of store.Store.
type Store struct {
	db  *sql.DB
	dim int
}

// Open connects to PostgreSQL and runs migrations. dim fixes the vector
// column dimension; it must match the embedding model in use.
func Open(cfg *config.DatabaseConfig, dim int) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}
	if dim <= 0 {
		return nil, errors.New("embedding dimension is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, dim: dim}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the pgvector extension and the two tables.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	createIdentities := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS identities (
			id           BIGSERIAL PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL,
			external_ref VARCHAR(255) NOT NULL DEFAULT '',
			embedding    vector(%d) NOT NULL,
			created_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`, s.dim)
	if _, err := s.db.ExecContext(ctx, createIdentities); err != nil {
		return fmt.Errorf("create identities table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_events (
			id          BIGSERIAL PRIMARY KEY,
			identity_id BIGINT NOT NULL REFERENCES identities(id),
			ts          TIMESTAMP WITH TIME ZONE NOT NULL
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

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}
