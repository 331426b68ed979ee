package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/satriadp/hadirku/internal/store"
)

// Append persists a new attendance event.
func (s *Store) Append(ctx context.Context, identityID int64, ts time.Time) (*store.AttendanceEvent, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO attendance_events (identity_id, ts) VALUES ($1, $2)
		RETURNING id`,
		identityID, ts.UTC()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
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
