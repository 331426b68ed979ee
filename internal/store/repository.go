package store

import (
	"context"
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
)

// IdentityReader provides read-only access to enrolled identities.
type IdentityReader interface {
	// Get retrieves an identity by ID, returns nil if not found.
	Get(ctx context.Context, id int64) (*Identity, error)
	// ListAll returns every enrolled identity ordered by ID ascending.
	// The order is stable within a call so gallery scans are deterministic.
	ListAll(ctx context.Context) ([]Identity, error)
	// Count returns the number of enrolled identities.
	Count(ctx context.Context) (int, error)
}

// IdentityWriter provides write access to identities.
type IdentityWriter interface {
	IdentityReader

	// Insert persists a new identity and returns it with the assigned ID.
	// IDs are unique and monotonically increasing.
	Insert(ctx context.Context, displayName, externalRef string, emb embedding.Vector) (*Identity, error)
}

// EventReader provides read-only access to attendance events.
type EventReader interface {
	// ListRecords returns every event joined with its identity, newest first.
	ListRecords(ctx context.Context) ([]AttendanceRecord, error)
	// CountEvents returns the total number of recorded events.
	CountEvents(ctx context.Context) (int, error)
}

// EventWriter provides write access to attendance events.
type EventWriter interface {
	EventReader

	// Append persists a new attendance event. The caller is responsible for
	// verifying that identityID references an existing identity; backends
	// with native foreign keys additionally reject orphaned events.
	Append(ctx context.Context, identityID int64, ts time.Time) (*AttendanceEvent, error)
}

// Store is the full backend contract: identities plus the attendance ledger.
type Store interface {
	IdentityWriter
	EventWriter
}
