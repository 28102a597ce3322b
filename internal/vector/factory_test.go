package vector

import (
	"errors"
	"testing"
)

func TestNewIndex_SelectsImplementation(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmHierarchical, AlgorithmLSH, AlgorithmHybrid} {
		idx, err := NewIndex(Config{Algorithm: alg}, nil)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		var ok bool
		switch alg {
		case AlgorithmHierarchical:
			_, ok = idx.(*HierarchicalIndex)
		case AlgorithmLSH:
			_, ok = idx.(*LSHIndex)
		case AlgorithmHybrid:
			_, ok = idx.(*HybridIndex)
		}
		if !ok {
			t.Errorf("%s: got %T", alg, idx)
		}
	}
}

func TestNewIndex_UnsupportedAlgorithm(t *testing.T) {
	_, err := NewIndex(Config{Algorithm: "annoy"}, nil)
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestNewIndex_InvalidConfig(t *testing.T) {
	_, err := NewIndex(Config{Algorithm: AlgorithmLSH, HashBits: 2}, nil)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
