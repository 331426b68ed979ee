package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// Get retrieves an identity by ID, returns nil if not found.
func (s *Store) Get(ctx context.Context, id int64) (*store.Identity, error) {
	var identity store.Identity
	var vec pgvector.Vector

	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, external_ref, embedding, created_at
		FROM identities WHERE id = $1`, id).Scan(
		&identity.ID, &identity.DisplayName, &identity.ExternalRef, &vec, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	identity.Embedding = embedding.Vector(vec.Slice())
	return &identity, nil
}

// ListAll returns every identity ordered by ID ascending. The vector column
// is typed, so undecodable embeddings cannot occur on this backend.
func (s *Store) ListAll(ctx context.Context) ([]store.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, external_ref, embedding, created_at
		FROM identities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var out []store.Identity
	for rows.Next() {
		var identity store.Identity
		var vec pgvector.Vector
		if err := rows.Scan(&identity.ID, &identity.DisplayName, &identity.ExternalRef, &vec, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Embedding = embedding.Vector(vec.Slice())
		out = append(out, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
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
	if emb.Dim() != s.dim {
		return nil, fmt.Errorf("%w: got %d, column is vector(%d)",
			embedding.ErrDimensionMismatch, emb.Dim(), s.dim)
	}

	var id int64
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO identities (display_name, external_ref, embedding)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		displayName, externalRef, pgvector.NewVector(emb)).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	return &store.Identity{
		ID:          id,
		DisplayName: displayName,
		ExternalRef: externalRef,
		Embedding:   emb.Clone(),
		CreatedAt:   createdAt,
	}, nil
}
