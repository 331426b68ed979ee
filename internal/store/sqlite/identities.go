package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

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

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanIdentity reads one identity row. An embedding that fails to decode
// marks the record corrupt instead of failing the scan; one bad row must not
// block matching against the rest of the gallery.
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
