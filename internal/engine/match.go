// Package engine contains the identity matching and enrollment logic: the
// match engine, the enrollment service with biometric dedup, and the
// append-only attendance ledger.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// GalleryProvider supplies the current set of enrolled identities for a
// single match pass. The returned slice order must be stable within one call.
type GalleryProvider interface {
	Gallery(ctx context.Context) ([]store.Identity, error)
}

// GalleryFunc adapts a function to the GalleryProvider interface.
type GalleryFunc func(ctx context.Context) ([]store.Identity, error)

// Gallery calls f.
func (f GalleryFunc) Gallery(ctx context.Context) ([]store.Identity, error) {
	return f(ctx)
}

// MatchResult is the outcome of one match pass.
type MatchResult struct {
	Matched  bool
	Identity store.Identity // zero value unless Matched
	Distance float64        // distance to Identity, unless !Matched
	Skipped  int            // corrupt gallery entries skipped during the scan
}

// Matcher decides whether a probe embedding corresponds to an enrolled
// identity. Implementations are pure with respect to their inputs.
type Matcher interface {
	Match(ctx context.Context, probe embedding.Vector) (MatchResult, error)
}

// LinearMatcher scans the full gallery on every call. O(gallery size); fine
// for the target scale of hundreds to low thousands of identities.
type LinearMatcher struct {
	Provider  GalleryProvider
	Metric    embedding.Metric
	Threshold float64
}

// NewLinearMatcher creates a matcher with the cosine recognition metric.
func NewLinearMatcher(provider GalleryProvider, threshold float64) *LinearMatcher {
	return &LinearMatcher{
		Provider:  provider,
		Metric:    embedding.Cosine,
		Threshold: threshold,
	}
}

// Match finds the gallery entry with minimum distance to the probe. The
// match is accepted only when the minimum distance is strictly below the
// threshold; a distance exactly at the threshold is not a match. Ties keep
// the entry encountered first in gallery order. An empty gallery yields an
// unmatched result, never an error.
func (m *LinearMatcher) Match(ctx context.Context, probe embedding.Vector) (MatchResult, error) {
	gallery, err := m.Provider.Gallery(ctx)
	if err != nil {
		return MatchResult{}, fmt.Errorf("load gallery: %w", err)
	}
	return matchAgainst(probe, gallery, m.Metric, m.Threshold)
}

// matchAgainst runs the scan over an already-loaded gallery snapshot.
func matchAgainst(probe embedding.Vector, gallery []store.Identity, metric embedding.Metric, threshold float64) (MatchResult, error) {
	var result MatchResult
	best := -1

	for i := range gallery {
		id := &gallery[i]
		if id.Corrupt || len(id.Embedding) == 0 {
			result.Skipped++
			continue
		}

		d, err := metric(probe, id.Embedding)
		if err != nil {
			// Dimension mismatch is a configuration fault, not a bad record.
			return MatchResult{}, fmt.Errorf("identity %d: %w", id.ID, err)
		}

		// Strict < keeps the first entry on exact ties.
		if best < 0 || d < result.Distance {
			best = i
			result.Distance = d
		}
	}

	if result.Skipped > 0 {
		log.Printf("gallery scan skipped %d corrupt embedding(s)", result.Skipped)
	}

	if best < 0 || result.Distance >= threshold {
		return MatchResult{Skipped: result.Skipped}, nil
	}

	result.Matched = true
	result.Identity = gallery[best]
	return result, nil
}
