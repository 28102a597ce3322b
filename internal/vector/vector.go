// Package vector provides approximate nearest-neighbor search over function
// embeddings: a hierarchical k-means index, a multi-table LSH index, and a
// hybrid combinator, with deterministic seeding and a bounded result cache.
package vector

import (
	"errors"
	"fmt"
	"math"
)

// Embedding is a function's semantic vector plus identifying metadata.
// All embeddings in one index build must share the same dimension.
type Embedding struct {
	ID         string                 `json:"id"`
	SemanticID string                 `json:"semantic_id"`
	Vector     []float32              `json:"vector"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SearchResult is a single similarity hit, produced fresh per query.
type SearchResult struct {
	ID         string                 `json:"id"`
	SemanticID string                 `json:"semantic_id"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Sentinel errors for the package's failure taxonomy. Callers match with
// errors.Is; the wrapping message carries the offending field and value.
var (
	ErrDimensionMismatch    = errors.New("vector dimension mismatch")
	ErrInvalidVectorValue   = errors.New("invalid vector value")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// ValidateVector checks v against the expected dimension and rejects
// non-finite elements. dim <= 0 means the dimension is not yet established
// and any non-empty length is accepted.
func ValidateVector(v []float32, dim int) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidVectorValue)
	}
	if dim > 0 && len(v) != dim {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(v), dim)
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w: element %d is %v", ErrInvalidVectorValue, i, x)
		}
	}
	return nil
}

// copyVector returns an owned copy of v.
func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// copyResults snapshots results so cached entries are never aliased by callers.
func copyResults(results []SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	copy(out, results)
	return out
}
