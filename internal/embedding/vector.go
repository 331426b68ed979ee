// Package embedding provides the fixed-dimension face embedding vector type
// and the distance metrics used by the matching and enrollment paths.
package embedding

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different lengths are
// compared. This is a configuration-level fault (mixed embedding models) and
// is never silently coerced.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Vector is a fixed-dimension face embedding produced by the extraction model.
type Vector []float32

// Dim returns the dimensionality of the vector.
func (v Vector) Dim() int {
	return len(v)
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// MarshalText encodes the vector as a JSON array string, the storage format
// used by the sqlite and mysql backends.
func (v Vector) MarshalText() ([]byte, error) {
	return json.Marshal([]float32(v))
}

// Decode parses a JSON array string into a Vector. Used when scanning stored
// embeddings; a decode failure marks the record as corrupt rather than
// aborting the whole gallery scan.
func Decode(data []byte) (Vector, error) {
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("decode embedding: empty vector")
	}
	return Vector(out), nil
}

// Cosine computes the cosine distance (1 - cosine similarity) between two
// vectors. The result is in [0, 2]: 0 for identical direction, 2 for
// opposite. Used on the recognition path.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("cosine distance of empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		// A zero vector has no direction; treat as maximally distant.
		return 2.0, nil
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors.
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return 1 - similarity, nil
}

// Euclidean computes the L2 distance between two vectors. Used on the
// enrollment dedup path. Its scale depends on raw embedding magnitude and is
// not comparable to cosine distance.
func Euclidean(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("euclidean distance of empty vectors")
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
