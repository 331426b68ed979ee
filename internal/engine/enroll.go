package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// Enroller receives newly enrolled identities, e.g. to keep a search index
// warm. Optional.
type Enroller interface {
	Add(id store.Identity)
}

// EnrollmentService validates enrollment requests against the duplicate
// policy before committing them. The snapshot-check-insert sequence runs
// under a single-writer mutex, so two concurrent enrollments of the same
// face cannot both pass the duplicate check.
type EnrollmentService struct {
	identities     store.IdentityWriter
	dedupThreshold float64
	dim            int
	index          Enroller // nil when no index is enabled

	mu sync.Mutex
}

// NewEnrollmentService creates an enrollment service. dim is the expected
// embedding dimension; dedupThreshold is the Euclidean distance below which
// two embeddings are considered the same person.
func NewEnrollmentService(identities store.IdentityWriter, dim int, dedupThreshold float64) *EnrollmentService {
	return &EnrollmentService{
		identities:     identities,
		dedupThreshold: dedupThreshold,
		dim:            dim,
	}
}

// SetIndex registers an index that receives every successfully enrolled
// identity.
func (s *EnrollmentService) SetIndex(index Enroller) {
	s.index = index
}

// Enroll checks the candidate embedding against every enrolled identity
// using Euclidean distance and inserts it when no existing identity falls
// within the dedup threshold. A near-duplicate returns *DuplicateError and
// leaves the store unchanged.
func (s *EnrollmentService) Enroll(ctx context.Context, displayName, externalRef string, emb embedding.Vector) (*store.Identity, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errors.New("display name is required")
	}
	if len(emb) == 0 {
		return nil, errors.New("embedding is required")
	}
	if s.dim > 0 && emb.Dim() != s.dim {
		return nil, fmt.Errorf("%w: got %d, store uses %d",
			embedding.ErrDimensionMismatch, emb.Dim(), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gallery, err := s.identities.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}

	skipped := 0
	for i := range gallery {
		existing := &gallery[i]
		if existing.Corrupt || len(existing.Embedding) == 0 {
			skipped++
			continue
		}
		d, err := embedding.Euclidean(emb, existing.Embedding)
		if err != nil {
			return nil, fmt.Errorf("identity %d: %w", existing.ID, err)
		}
		if d < s.dedupThreshold {
			return nil, &DuplicateError{
				ExistingID:   existing.ID,
				ExistingName: existing.DisplayName,
				ExistingRef:  existing.ExternalRef,
				Distance:     d,
			}
		}
	}
	if skipped > 0 {
		log.Printf("enrollment dedup scan skipped %d corrupt embedding(s)", skipped)
	}

	created, err := s.identities.Insert(ctx, displayName, externalRef, emb)
	if err != nil {
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	if s.index != nil {
		s.index.Add(*created)
	}
	return created, nil
}
