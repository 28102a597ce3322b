package vector

import (
	"math"
	"testing"
)

func TestNormalizeSimilarity(t *testing.T) {
	if got := NormalizeSimilarity(1, 1); got != 1 {
		t.Errorf("normalize(1) = %v, want 1", got)
	}
	if got := NormalizeSimilarity(-1, 1); got != 0 {
		t.Errorf("normalize(-1) = %v, want 0", got)
	}
	if got := NormalizeSimilarity(0, 1); got != 0.5 {
		t.Errorf("normalize(0) = %v, want 0.5", got)
	}
	// Temperature below 1 sharpens: mid values drop.
	if got := NormalizeSimilarity(0, 0.5); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("normalize(0, temp 0.5) = %v, want 0.25", got)
	}
}

func TestCombineSimilarities(t *testing.T) {
	// Equal weights: harmonic mean of 0.5 and 0.5 is 0.5.
	if got := CombineSimilarities([]float64{0.5, 0.5}, []float64{1, 1}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("harmonic mean = %v, want 0.5", got)
	}
	// Non-positive scores are skipped, not divided by.
	if got := CombineSimilarities([]float64{0, 0.8}, []float64{1, 1}); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("combine with zero = %v, want 0.8", got)
	}
	if got := CombineSimilarities([]float64{0, -0.2}, []float64{1, 1}); got != 0 {
		t.Errorf("all non-positive = %v, want 0", got)
	}
	// Harmonic mean is dominated by the smaller score.
	got := CombineSimilarities([]float64{0.9, 0.1}, []float64{1, 1})
	if got >= 0.5 {
		t.Errorf("harmonic mean %v should sit below the arithmetic mean", got)
	}
}

func TestCalculateConfidence(t *testing.T) {
	// Matching norms, no stability: unchanged.
	if got := CalculateConfidence(0.8, 1, 1, 0); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("confidence = %v, want 0.8", got)
	}
	// Sharply diverging norms penalize.
	penalized := CalculateConfidence(0.8, 1, 10, 0)
	if penalized >= 0.8 {
		t.Errorf("diverging norms should penalize: %v", penalized)
	}
	// Stability boosts, capped at 1.2x and clamped to 1.
	boosted := CalculateConfidence(0.5, 1, 1, 1)
	if math.Abs(boosted-0.6) > 1e-9 {
		t.Errorf("full stability boost = %v, want 0.6", boosted)
	}
	if got := CalculateConfidence(0.95, 1, 1, 5); got > 1 {
		t.Errorf("confidence %v exceeds 1", got)
	}
}

func TestRankBySimilarity_SortsDescending(t *testing.T) {
	candidates := []SearchResult{
		{ID: "a", Similarity: 0.2},
		{ID: "b", Similarity: 0.9},
		{ID: "c", Similarity: 0.5},
	}
	ranked := RankBySimilarity(candidates, false)
	if ranked[0].ID != "b" || ranked[1].ID != "c" || ranked[2].ID != "a" {
		t.Errorf("unexpected order: %v", ranked)
	}
	// Input order preserved.
	if candidates[0].ID != "a" {
		t.Error("input mutated")
	}
}

func TestRankBySimilarity_AdaptiveCutoff(t *testing.T) {
	// Gap of 0.5 between b and c dwarfs the 10% threshold: truncate there.
	candidates := []SearchResult{
		{ID: "a", Similarity: 0.85},
		{ID: "b", Similarity: 0.9},
		{ID: "c", Similarity: 0.3},
		{ID: "d", Similarity: 0.28},
	}
	ranked := RankBySimilarity(candidates, true)
	if len(ranked) != 2 {
		t.Fatalf("expected cutoff after 2, got %d", len(ranked))
	}
	if ranked[0].ID != "b" || ranked[1].ID != "a" {
		t.Errorf("unexpected order: %v", ranked)
	}

	// Uniform spacing: no gap exceeds 10% of best, full list returned.
	flat := []SearchResult{
		{ID: "a", Similarity: 0.90},
		{ID: "b", Similarity: 0.88},
		{ID: "c", Similarity: 0.86},
	}
	if got := RankBySimilarity(flat, true); len(got) != 3 {
		t.Errorf("expected full list, got %d", len(got))
	}
}
