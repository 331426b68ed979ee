// Package mock provides an in-memory store implementation for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// Store is an in-memory implementation of store.Store with error injection.
type Store struct {
	mu         sync.RWMutex
	identities map[int64]store.Identity
	events     []store.AttendanceEvent
	nextID     int64
	nextEvent  int64

	// Error injection
	GetError     error
	ListError    error
	CountError   error
	InsertError  error
	AppendError  error
	RecordsError error
}

// New creates an empty mock store.
func New() *Store {
	return &Store{
		identities: make(map[int64]store.Identity),
		nextID:     1,
		nextEvent:  1,
	}
}

// AddIdentity seeds an identity directly, bypassing enrollment checks.
// Useful for building test galleries, including corrupt entries.
func (s *Store) AddIdentity(id store.Identity) store.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id.ID == 0 {
		id.ID = s.nextID
	}
	if id.ID >= s.nextID {
		s.nextID = id.ID + 1
	}
	s.identities[id.ID] = id
	return id
}

// Get retrieves an identity by ID, nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*store.Identity, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

// ListAll returns all identities ordered by ID.
func (s *Store) ListAll(ctx context.Context) ([]store.Identity, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Identity, 0, len(s.identities))
	for _, id := range s.identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of identities.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.CountError != nil {
		return 0, s.CountError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}

// Insert persists a new identity with the next monotonic ID.
func (s *Store) Insert(ctx context.Context, displayName, externalRef string, emb embedding.Vector) (*store.Identity, error) {
	if s.InsertError != nil {
		return nil, s.InsertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := store.Identity{
		ID:          s.nextID,
		DisplayName: displayName,
		ExternalRef: externalRef,
		Embedding:   emb.Clone(),
		CreatedAt:   time.Now(),
	}
	s.nextID++
	s.identities[identity.ID] = identity
	return &identity, nil
}

// Append persists a new attendance event.
func (s *Store) Append(ctx context.Context, identityID int64, ts time.Time) (*store.AttendanceEvent, error) {
	if s.AppendError != nil {
		return nil, s.AppendError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event := store.AttendanceEvent{
		ID:         s.nextEvent,
		IdentityID: identityID,
		Timestamp:  ts,
	}
	s.nextEvent++
	s.events = append(s.events, event)
	return &event, nil
}

// ListRecords returns joined records, newest first.
func (s *Store) ListRecords(ctx context.Context) ([]store.AttendanceRecord, error) {
	if s.RecordsError != nil {
		return nil, s.RecordsError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.AttendanceRecord, 0, len(s.events))
	for _, e := range s.events {
		identity := s.identities[e.IdentityID]
		out = append(out, store.AttendanceRecord{
			EventID:     e.ID,
			IdentityID:  e.IdentityID,
			DisplayName: identity.DisplayName,
			ExternalRef: identity.ExternalRef,
			Timestamp:   e.Timestamp,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].EventID > out[j].EventID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// CountEvents returns the number of events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	if s.RecordsError != nil {
		return 0, s.RecordsError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}
