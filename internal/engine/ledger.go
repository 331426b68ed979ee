package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
)

// RecognitionResult is the outcome of a recognition-mode attendance request.
// Recognized=false is a normal negative outcome (nobody matched), not an
// error.
type RecognitionResult struct {
	Recognized bool
	Identity   store.Identity
	Distance   float64
	Event      *store.AttendanceEvent
}

// Ledger appends attendance events. Every event references an identity that
// exists at the time of the append; the check lives here rather than
// trusting backend foreign-key enforcement.
type Ledger struct {
	identities store.IdentityReader
	events     store.EventWriter
	matcher    Matcher

	// now is the event clock; overridable in tests. Timestamps have second
	// resolution and are taken at record time, not capture time.
	now func() time.Time
}

// NewLedger creates a ledger. matcher may be nil when only direct mode is
// used.
func NewLedger(identities store.IdentityReader, events store.EventWriter, matcher Matcher) *Ledger {
	return &Ledger{
		identities: identities,
		events:     events,
		matcher:    matcher,
		now:        time.Now,
	}
}

// Record appends an attendance event for a known identity (direct mode).
// Returns ErrUnknownIdentity and writes nothing when the identity does not
// exist. Repeated check-ins for the same identity are allowed without limit;
// a per-day cap would be a policy change applied here.
func (l *Ledger) Record(ctx context.Context, identityID int64) (*store.AttendanceEvent, *store.Identity, error) {
	identity, err := l.identities.Get(ctx, identityID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up identity %d: %w", identityID, err)
	}
	if identity == nil {
		return nil, nil, fmt.Errorf("identity %d: %w", identityID, ErrUnknownIdentity)
	}

	ts := l.now().Truncate(time.Second)
	event, err := l.events.Append(ctx, identity.ID, ts)
	if err != nil {
		return nil, nil, fmt.Errorf("append event: %w", err)
	}
	return event, identity, nil
}

// Recognize matches the probe against the gallery and, on a match, records
// exactly one attendance event for the matched identity. An unmatched probe
// writes nothing and returns Recognized=false.
func (l *Ledger) Recognize(ctx context.Context, probe embedding.Vector) (RecognitionResult, error) {
	match, err := l.matcher.Match(ctx, probe)
	if err != nil {
		return RecognitionResult{}, fmt.Errorf("match probe: %w", err)
	}
	if !match.Matched {
		return RecognitionResult{}, nil
	}

	event, identity, err := l.Record(ctx, match.Identity.ID)
	if err != nil {
		return RecognitionResult{}, err
	}
	return RecognitionResult{
		Recognized: true,
		Identity:   *identity,
		Distance:   match.Distance,
		Event:      event,
	}, nil
}
