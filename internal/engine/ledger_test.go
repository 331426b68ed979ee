package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
	"github.com/satriadp/hadirku/internal/store/mock"
)

func newTestLedger(db *mock.Store, threshold float64) *Ledger {
	matcher := NewLinearMatcher(GalleryFunc(db.ListAll), threshold)
	return NewLedger(db, db, matcher)
}

func TestLedger_DirectMode(t *testing.T) {
	db := mock.New()
	ana := db.AddIdentity(store.Identity{DisplayName: "Ana", ExternalRef: "2101", Embedding: embedding.Vector{1, 0}})
	ledger := newTestLedger(db, 0.4)

	event, identity, err := ledger.Record(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.DisplayName != "Ana" {
		t.Errorf("expected identity Ana, got %q", identity.DisplayName)
	}
	if event.IdentityID != ana.ID {
		t.Errorf("event references identity %d, expected %d", event.IdentityID, ana.ID)
	}
	if !event.Timestamp.Equal(event.Timestamp.Truncate(time.Second)) {
		t.Errorf("expected second-resolution timestamp, got %v", event.Timestamp)
	}
}

func TestLedger_UnknownIdentity(t *testing.T) {
	db := mock.New()
	ledger := newTestLedger(db, 0.4)

	_, _, err := ledger.Record(context.Background(), 42)
	if !errors.Is(err, ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}

	count, _ := db.CountEvents(context.Background())
	if count != 0 {
		t.Errorf("failed record must write zero events, got %d", count)
	}
}

func TestLedger_RecognitionRoundTrip(t *testing.T) {
	db := mock.New()
	emb := embedding.Vector{0.1, 0.9, 0.3}
	ana := db.AddIdentity(store.Identity{DisplayName: "Ana", ExternalRef: "2101", Embedding: emb.Clone()})
	ledger := newTestLedger(db, 0.4)

	result, err := ledger.Recognize(context.Background(), emb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Recognized {
		t.Fatal("expected probe identical to enrolled embedding to be recognized")
	}
	if result.Identity.ID != ana.ID {
		t.Errorf("expected identity %d, got %d", ana.ID, result.Identity.ID)
	}
	if result.Distance > 1e-9 {
		t.Errorf("expected distance ~0, got %f", result.Distance)
	}

	count, _ := db.CountEvents(context.Background())
	if count != 1 {
		t.Errorf("expected exactly one event, got %d", count)
	}
}

func TestLedger_RecognitionFailedWritesNothing(t *testing.T) {
	db := mock.New()
	db.AddIdentity(store.Identity{DisplayName: "Ana", Embedding: embedding.Vector{1, 0}})
	ledger := newTestLedger(db, 0.4)

	// Orthogonal probe: distance 1.0, well above threshold.
	result, err := ledger.Recognize(context.Background(), embedding.Vector{0, 1})
	if err != nil {
		t.Fatalf("unmatched recognition is not an error, got %v", err)
	}
	if result.Recognized {
		t.Error("expected unrecognized result")
	}

	count, _ := db.CountEvents(context.Background())
	if count != 0 {
		t.Errorf("unmatched probe must write zero events, got %d", count)
	}
}

func TestLedger_RepeatedCheckInsAllowed(t *testing.T) {
	db := mock.New()
	ana := db.AddIdentity(store.Identity{DisplayName: "Ana", Embedding: embedding.Vector{1, 0}})
	ledger := newTestLedger(db, 0.4)
	ctx := context.Background()

	for range 3 {
		if _, _, err := ledger.Record(ctx, ana.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	count, _ := db.CountEvents(ctx)
	if count != 3 {
		t.Errorf("repeated check-ins are allowed, expected 3 events, got %d", count)
	}
}

func TestLedger_ClockInjection(t *testing.T) {
	db := mock.New()
	ana := db.AddIdentity(store.Identity{DisplayName: "Ana", Embedding: embedding.Vector{1, 0}})
	ledger := newTestLedger(db, 0.4)

	fixed := time.Date(2025, 9, 1, 8, 30, 15, 999_000_000, time.UTC)
	ledger.now = func() time.Time { return fixed }

	event, _, err := ledger.Record(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 9, 1, 8, 30, 15, 0, time.UTC)
	if !event.Timestamp.Equal(want) {
		t.Errorf("expected timestamp truncated to %v, got %v", want, event.Timestamp)
	}
}

func TestLedger_StorageErrorPropagates(t *testing.T) {
	db := mock.New()
	ana := db.AddIdentity(store.Identity{DisplayName: "Ana", Embedding: embedding.Vector{1, 0}})
	appendErr := errors.New("connection lost")
	db.AppendError = appendErr
	ledger := newTestLedger(db, 0.4)

	_, _, err := ledger.Record(context.Background(), ana.ID)
	if !errors.Is(err, appendErr) {
		t.Errorf("expected storage error to propagate unmodified, got %v", err)
	}
}
