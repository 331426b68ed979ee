// Package store defines the durable records of the attendance system and the
// repository contracts its backends implement.
package store

import (
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
)

// Identity is an enrolled person. Created once by the enrollment service and
// immutable afterwards; the embedding is the reference used for matching.
type Identity struct {
	ID          int64
	DisplayName string
	ExternalRef string // opaque external reference, e.g. a student number
	Embedding   embedding.Vector
	CreatedAt   time.Time

	// Corrupt is set when the stored embedding could not be decoded.
	// Gallery scans skip such records instead of failing the whole scan.
	Corrupt bool
}

// AttendanceEvent is a single check-in. Append-only: never rewritten or
// deleted by this system.
type AttendanceEvent struct {
	ID         int64
	IdentityID int64
	Timestamp  time.Time // second resolution
}

// AttendanceRecord is a flattened event-plus-identity row for listings and
// CSV export.
type AttendanceRecord struct {
	EventID     int64
	IdentityID  int64
	DisplayName string
	ExternalRef string
	Timestamp   time.Time
}
