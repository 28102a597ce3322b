package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity_SelfAndOpposite(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	neg := make([]float32, len(v))
	for i := range v {
		neg[i] = -v[i]
	}
	if got := CosineSimilarity(v, v, 0, 0); math.Abs(got-1) > 1e-9 {
		t.Errorf("cos(v,v) = %v, want 1", got)
	}
	if got := CosineSimilarity(v, neg, 0, 0); math.Abs(got+1) > 1e-9 {
		t.Errorf("cos(v,-v) = %v, want -1", got)
	}
}

func TestCosineSimilarity_ZeroNorm(t *testing.T) {
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 0}, 0, 0); got != 0 {
		t.Errorf("expected 0 for zero vector, got %v", got)
	}
}

func TestCosineSimilarity_PrecomputedNorms(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	plain := CosineSimilarity(a, b, 0, 0)
	fast := CosineSimilarity(a, b, Norm(a), Norm(b))
	if math.Abs(plain-fast) > 1e-12 {
		t.Errorf("precomputed norm path diverged: %v vs %v", plain, fast)
	}
}

func TestSquaredL2(t *testing.T) {
	got := SquaredL2([]float32{1, 2}, []float32{4, 6})
	if got != 25 {
		t.Errorf("SquaredL2 = %v, want 25", got)
	}
}

func TestValidateVector(t *testing.T) {
	if err := ValidateVector([]float32{1, 2}, 2); err != nil {
		t.Errorf("valid vector rejected: %v", err)
	}
	if err := ValidateVector([]float32{1, 2, 3}, 2); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if err := ValidateVector([]float32{1, float32(math.NaN())}, 2); !errors.Is(err, ErrInvalidVectorValue) {
		t.Errorf("expected ErrInvalidVectorValue for NaN, got %v", err)
	}
	if err := ValidateVector([]float32{float32(math.Inf(1)), 0}, 2); !errors.Is(err, ErrInvalidVectorValue) {
		t.Errorf("expected ErrInvalidVectorValue for Inf, got %v", err)
	}
	if err := ValidateVector(nil, 0); !errors.Is(err, ErrInvalidVectorValue) {
		t.Errorf("expected ErrInvalidVectorValue for empty, got %v", err)
	}
}
