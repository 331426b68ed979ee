// Package mysql provides a MySQL/MariaDB-backed store for deployments that
// standardize on MySQL. Embeddings are stored as JSON array text, the same
// portable format the sqlite backend uses.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// Store is a MySQL-backed implementation of store.Store.
type Store struct {
	db *sql.DB
}

// Open connects to MySQL and runs migrations. The DSN must include
// parseTime=true so DATETIME columns scan into time.Time.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database DSN is required")
	}

	db, err := sql.Open("mysql", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

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

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS identities (
			id           BIGINT AUTO_INCREMENT PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL,
			external_ref VARCHAR(255) NOT NULL DEFAULT '',
			embedding    TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`); err != nil {
		return fmt.Errorf("create identities table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_events (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			identity_id BIGINT NOT NULL,
			ts          DATETIME NOT NULL,
			INDEX attendance_events_ts_idx (ts),
			CONSTRAINT fk_attendance_identity FOREIGN KEY (identity_id) REFERENCES identities(id)
		) ENGINE=InnoDB`); err != nil {
		return fmt.Errorf("create attendance_events table: %w", err)
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

// Get retrieves an identity by ID, returns nil if not found.
func (s *Store) Get(ctx context.Context, id int64) (*store.Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, external_ref, embedding, created_at
		FROM identities WHERE id = ?`, id)

	identity, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}
	return identity, nil
}

// ListAll returns every identity ordered by ID ascending.
func (s *Store) ListAll(ctx context.Context) ([]store.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, external_ref, embedding, created_at
		FROM identities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var out []store.Identity
	corrupt := 0
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		if identity.Corrupt {
			corrupt++
		}
		out = append(out, *identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	if corrupt > 0 {
		log.Printf("identities: %d row(s) with undecodable embeddings", corrupt)
	}
	return out, nil
}

// Count returns the number of enrolled identities.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// Insert persists a new identity and returns it with the assigned ID.
func (s *Store) Insert(ctx context.Context, displayName, externalRef string, emb embedding.Vector) (*store.Identity, error) {
	data, err := emb.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (display_name, external_ref, embedding, created_at)
		VALUES (?, ?, ?, ?)`,
		displayName, externalRef, string(data), now)
	if err != nil {
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert identity id: %w", err)
	}

	return &store.Identity{
		ID:          id,
		DisplayName: displayName,
		ExternalRef: externalRef,
		Embedding:   emb.Clone(),
		CreatedAt:   now,
	}, nil
}

// Append persists a new attendance event.
func (s *Store) Append(ctx context.Context, identityID int64, ts time.Time) (*store.AttendanceEvent, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_events (identity_id, ts) VALUES (?, ?)`,
		identityID, ts.UTC())
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert event id: %w", err)
	}
	return &store.AttendanceEvent{ID: id, IdentityID: identityID, Timestamp: ts}, nil
}

// ListRecords returns events joined with identities, newest first.
func (s *Store) ListRecords(ctx context.Context) ([]store.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.identity_id, i.display_name, i.external_ref, e.ts
		FROM attendance_events e
		JOIN identities i ON e.identity_id = i.id
		ORDER BY e.ts DESC, e.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	var out []store.AttendanceRecord
	for rows.Next() {
		var r store.AttendanceRecord
		if err := rows.Scan(&r.EventID, &r.IdentityID, &r.DisplayName, &r.ExternalRef, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return out, nil
}

// CountEvents returns the total number of recorded events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanIdentity reads one identity row, marking undecodable embeddings as
// corrupt instead of failing the whole scan.
func scanIdentity(row rowScanner) (*store.Identity, error) {
	var identity store.Identity
	var raw string
	if err := row.Scan(&identity.ID, &identity.DisplayName, &identity.ExternalRef, &raw, &identity.CreatedAt); err != nil {
		return nil, err
	}

	emb, err := embedding.Decode([]byte(raw))
	if err != nil {
		identity.Corrupt = true
		return &identity, nil
	}
	identity.Embedding = emb
	return &identity, nil
}
