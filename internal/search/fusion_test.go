package search

import (
	"math"
	"testing"

	"github.com/codescope/codescope/internal/keyword"
	"github.com/codescope/codescope/internal/vector"
)

func TestNormalizeKeywordScores(t *testing.T) {
	results := []*keyword.KeywordResult{
		{ID: "a", Score: 4},
		{ID: "b", Score: 2},
	}
	normalized := NormalizeKeywordScores(results)
	if normalized["a"] != 1 || normalized["b"] != 0.5 {
		t.Errorf("normalized = %v", normalized)
	}
	if got := NormalizeKeywordScores(nil); len(got) != 0 {
		t.Errorf("empty input should yield empty map, got %v", got)
	}
}

func TestNormalizeSemanticScores(t *testing.T) {
	results := []vector.SearchResult{
		{ID: "a", Similarity: 1},
		{ID: "b", Similarity: -1},
		{ID: "c", Similarity: 0},
	}
	normalized := NormalizeSemanticScores(results)
	if normalized["a"] != 1 || normalized["b"] != 0 || normalized["c"] != 0.5 {
		t.Errorf("normalized = %v", normalized)
	}
}

func TestFuse(t *testing.T) {
	keywordScores := map[string]float64{"a": 1.0, "b": 0.5}
	semanticScores := map[string]float64{"b": 1.0, "c": 0.8}
	fused := Fuse(keywordScores, semanticScores, 0.3, 0.7)
	if len(fused) != 3 {
		t.Fatalf("fused len = %d, want 3", len(fused))
	}
	// b: 0.3*0.5 + 0.7*1.0 = 0.85, the best.
	if fused[0].FunctionID != "b" {
		t.Errorf("top = %s, want b", fused[0].FunctionID)
	}
	if math.Abs(fused[0].Score-0.85) > 1e-9 {
		t.Errorf("top score = %v, want 0.85", fused[0].Score)
	}
	for i := 1; i < len(fused); i++ {
		if fused[i].Score > fused[i-1].Score {
			t.Errorf("not descending at %d", i)
		}
	}
}

func TestFuse_KeywordOnly(t *testing.T) {
	fused := Fuse(map[string]float64{"a": 1}, map[string]float64{}, 1, 0)
	if len(fused) != 1 || fused[0].Score != 1 {
		t.Errorf("fused = %+v", fused)
	}
}
