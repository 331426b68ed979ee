package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownIdentity is returned when a direct-mode attendance request
// references an identity that does not exist in the store. No event is
// written.
var ErrUnknownIdentity = errors.New("unknown identity")

// DuplicateError is returned by enrollment when the candidate embedding is
// within the dedup threshold of an already-enrolled identity. It is an
// expected business outcome, not a system fault.
type DuplicateError struct {
	ExistingID   int64
	ExistingName string
	ExistingRef  string
	Distance     float64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("face already enrolled as %s (ref %s), distance %.2f",
		e.ExistingName, e.ExistingRef, e.Distance)
}
