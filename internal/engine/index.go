package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// hnswMaxNeighbors is the HNSW M parameter.
const hnswMaxNeighbors = 16

// indexCandidates is how many nearest neighbors the index reports per probe.
// More than one so that a corrupt or stale top hit does not hide a valid one.
const indexCandidates = 4

// IndexMatcher answers match queries from an in-memory HNSW graph instead of
// a full gallery scan. Candidate distances are re-verified with the exact
// cosine metric so accept/reject decisions are identical to LinearMatcher.
type IndexMatcher struct {
	Threshold float64

	mu         sync.RWMutex
	graph      *hnsw.Graph[int64]
	identities map[int64]store.Identity
	skipped    int
}

// NewIndexMatcher creates an empty index with the given recognition threshold.
func NewIndexMatcher(threshold float64) *IndexMatcher {
	return &IndexMatcher{
		Threshold:  threshold,
		identities: make(map[int64]store.Identity),
	}
}

// Build populates the index from a gallery snapshot, replacing any previous
// contents. Corrupt entries are left out of the graph.
func (m *IndexMatcher) Build(ctx context.Context, provider GalleryProvider) error {
	gallery, err := provider.Gallery(ctx)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	g := hnsw.NewGraph[int64]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	identities := make(map[int64]store.Identity, len(gallery))
	skipped := 0
	for i := range gallery {
		id := gallery[i]
		if id.Corrupt || len(id.Embedding) == 0 {
			skipped++
			continue
		}
		g.Add(hnsw.MakeNode(id.ID, id.Embedding))
		identities[id.ID] = id
	}

	m.mu.Lock()
	m.graph = g
	m.identities = identities
	m.skipped = skipped
	m.mu.Unlock()
	return nil
}

// Add inserts a newly enrolled identity into the index. Corrupt entries are
// not indexed but still counted so Match reports them the way a full scan
// would.
func (m *IndexMatcher) Add(id store.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id.Corrupt || len(id.Embedding) == 0 {
		m.skipped++
		return
	}

	if m.graph == nil {
		g := hnsw.NewGraph[int64]()
		g.M = hnswMaxNeighbors
		g.Ml = 1.0 / float64(hnswMaxNeighbors)
		g.Distance = hnsw.CosineDistance
		m.graph = g
	}
	m.graph.Add(hnsw.MakeNode(id.ID, id.Embedding))
	m.identities[id.ID] = id
}

// Count returns the number of identities in the index.
func (m *IndexMatcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities)
}

// Match searches the graph for the nearest enrolled identity. The approximate
// candidates are re-scored with the exact cosine distance and the same
// strict-threshold rule as the linear scan.
func (m *IndexMatcher) Match(ctx context.Context, probe embedding.Vector) (MatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.graph == nil || len(m.identities) == 0 {
		return MatchResult{Skipped: m.skipped}, nil
	}

	neighbors := m.graph.Search(probe, indexCandidates)

	result := MatchResult{Skipped: m.skipped}
	found := false
	for _, n := range neighbors {
		id, ok := m.identities[n.Key]
		if !ok {
			continue
		}
		d, err := embedding.Cosine(probe, id.Embedding)
		if err != nil {
			return MatchResult{}, fmt.Errorf("identity %d: %w", id.ID, err)
		}
		// Lower ID wins exact ties to mirror the linear scan's
		// first-in-gallery preference (galleries are ordered by ID).
		if !found || d < result.Distance || (d == result.Distance && id.ID < result.Identity.ID) {
			found = true
			result.Distance = d
			result.Identity = id
		}
	}

	if !found || result.Distance >= m.Threshold {
		return MatchResult{Skipped: m.skipped}, nil
	}
	result.Matched = true
	return result, nil
}
