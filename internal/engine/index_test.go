package engine

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// ringGallery builds n identities with embeddings spread on the unit circle.
func ringGallery(n int) []store.Identity {
	out := make([]store.Identity, n)
	for i := range out {
		angle := float64(i) / float64(n) * 2 * math.Pi
		out[i] = store.Identity{
			ID:          int64(i + 1),
			DisplayName: fmt.Sprintf("person-%d", i+1),
			Embedding:   embedding.Vector{float32(math.Cos(angle)), float32(math.Sin(angle))},
		}
	}
	return out
}

func TestIndexMatcher_EmptyIndex(t *testing.T) {
	m := NewIndexMatcher(0.4)

	result, err := m.Match(context.Background(), embedding.Vector{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Error("expected unmatched result for empty index")
	}
}

func TestIndexMatcher_AgreesWithLinearScan(t *testing.T) {
	gallery := ringGallery(24)
	provider := staticGallery(gallery...)

	index := NewIndexMatcher(0.05)
	if err := index.Build(context.Background(), provider); err != nil {
		t.Fatalf("build index: %v", err)
	}
	linear := NewLinearMatcher(provider, 0.05)

	for i := range gallery {
		probe := gallery[i].Embedding
		want, err := linear.Match(context.Background(), probe)
		if err != nil {
			t.Fatalf("linear match: %v", err)
		}
		got, err := index.Match(context.Background(), probe)
		if err != nil {
			t.Fatalf("index match: %v", err)
		}
		if got.Matched != want.Matched || got.Identity.ID != want.Identity.ID {
			t.Errorf("probe %d: index %+v disagrees with linear %+v", i, got, want)
		}
	}
}

func TestIndexMatcher_ThresholdIsStrict(t *testing.T) {
	index := NewIndexMatcher(1.0)
	index.Add(store.Identity{ID: 1, Embedding: embedding.Vector{0, 1}})

	// Orthogonal probe: exact cosine distance 1.0, not below the threshold.
	result, err := index.Match(context.Background(), embedding.Vector{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Error("distance at threshold must not match")
	}
}

func TestIndexMatcher_AddAfterBuild(t *testing.T) {
	provider := staticGallery(ringGallery(4)...)
	index := NewIndexMatcher(0.4)
	if err := index.Build(context.Background(), provider); err != nil {
		t.Fatalf("build index: %v", err)
	}

	newcomer := store.Identity{ID: 99, DisplayName: "new", Embedding: embedding.Vector{0.7071, -0.7071}}
	index.Add(newcomer)

	if index.Count() != 5 {
		t.Errorf("expected 5 indexed identities, got %d", index.Count())
	}

	result, err := index.Match(context.Background(), newcomer.Embedding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || result.Identity.ID != 99 {
		t.Errorf("expected newly added identity to match, got %+v", result)
	}
}

func TestIndexMatcher_SkipsCorruptOnBuild(t *testing.T) {
	provider := staticGallery(
		store.Identity{ID: 1, Corrupt: true},
		store.Identity{ID: 2, Embedding: embedding.Vector{1, 0}},
	)
	index := NewIndexMatcher(0.4)
	if err := index.Build(context.Background(), provider); err != nil {
		t.Fatalf("build index: %v", err)
	}
	if index.Count() != 1 {
		t.Errorf("corrupt entries must be left out of the index, got %d", index.Count())
	}
}

func TestIndexMatcher_ReportsSkippedWhenUnmatched(t *testing.T) {
	provider := staticGallery(
		store.Identity{ID: 1, Corrupt: true},
		store.Identity{ID: 2, Embedding: embedding.Vector{}},
		store.Identity{ID: 3, Embedding: embedding.Vector{0, 1}},
	)

	index := NewIndexMatcher(0.4)
	if err := index.Build(context.Background(), provider); err != nil {
		t.Fatalf("build index: %v", err)
	}
	linear := NewLinearMatcher(provider, 0.4)

	// Orthogonal probe: the only healthy entry is above the threshold, so the
	// result is unmatched but must still report the corrupt rows, exactly as
	// the full scan does.
	probe := embedding.Vector{1, 0}
	want, err := linear.Match(context.Background(), probe)
	if err != nil {
		t.Fatalf("linear match: %v", err)
	}
	got, err := index.Match(context.Background(), probe)
	if err != nil {
		t.Fatalf("index match: %v", err)
	}
	if got.Matched {
		t.Error("expected unmatched result")
	}
	if got.Skipped != 2 {
		t.Errorf("expected 2 skipped entries, got %d", got.Skipped)
	}
	if got.Skipped != want.Skipped {
		t.Errorf("index skipped %d, linear skipped %d", got.Skipped, want.Skipped)
	}

	// Add with a corrupt record keeps the count in step.
	index.Add(store.Identity{ID: 4, Corrupt: true})
	got, err = index.Match(context.Background(), probe)
	if err != nil {
		t.Fatalf("index match: %v", err)
	}
	if got.Skipped != 3 {
		t.Errorf("expected 3 skipped entries after corrupt add, got %d", got.Skipped)
	}
}
