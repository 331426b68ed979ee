package embedding

// Metric computes a distance between two vectors of equal dimension.
// Implementations must be pure: no side effects, deterministic for fixed
// inputs.
type Metric func(a, b Vector) (float64, error)

// Named metrics for configuration and logging.
const (
	MetricCosine    = "cosine"
	MetricEuclidean = "euclidean"
)

// ByName returns the metric registered under the given name, or nil if the
// name is unknown.
func ByName(name string) Metric {
	switch name {
	case MetricCosine:
		return Cosine
	case MetricEuclidean:
		return Euclidean
	default:
		return nil
	}
}
