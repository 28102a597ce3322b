package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/embedding"
	"github.com/codescope/codescope/internal/keyword"
	"github.com/codescope/codescope/internal/models"
	"github.com/codescope/codescope/internal/storage"
	"github.com/codescope/codescope/internal/vector"
)

func testEngine(t *testing.T) (*Engine, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	kw, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })

	annCfg := vector.DefaultConfig()
	annCfg.Seed = 42
	idx, err := vector.NewIndex(annCfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	searchCfg := &config.SearchConfig{
		DefaultLimit:   10,
		MaxLimit:       100,
		TopKCandidates: 50,
		KeywordWeight:  0.3,
		SemanticWeight: 0.7,
	}
	return NewEngine(store, embedding.NewMockEmbedder(64), idx, kw, searchCfg, nil), store
}

func seedFunctions(t *testing.T, store storage.Storage) {
	t.Helper()
	ctx := context.Background()
	fns := []*models.Function{
		{ID: "1", Package: "config", Name: "LoadConfig", Signature: "(path string) (*Config, error)", Doc: "LoadConfig reads the configuration file."},
		{ID: "2", Package: "server", Name: "StartServer", Signature: "() error", Doc: "StartServer runs the HTTP listener."},
		{ID: "3", Package: "vector", Name: "CosineSimilarity", Signature: "(a, b []float32) float64", Doc: "CosineSimilarity computes vector similarity."},
	}
	for _, fn := range fns {
		if err := store.SaveFunction(ctx, fn); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEngine_RebuildAndSearch(t *testing.T) {
	engine, store := testEngine(t)
	seedFunctions(t, store)
	ctx := context.Background()
	if err := engine.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}
	if got := engine.IndexStats().TotalVectors; got != 3 {
		t.Errorf("TotalVectors = %d, want 3", got)
	}

	// Keyword-only: deterministic regardless of mock embedding geometry.
	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "configuration file", KeywordWeight: 1, SemanticWeight: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	if resp.Results[0].Function.ID != "1" {
		t.Errorf("top result = %s, want 1 (LoadConfig)", resp.Results[0].Function.ID)
	}
	if resp.Results[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", resp.Results[0].Rank)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Score > resp.Results[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestEngine_SemanticSearch(t *testing.T) {
	engine, store := testEngine(t)
	seedFunctions(t, store)
	ctx := context.Background()
	if err := engine.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}
	// Querying with a function's exact embedding text yields similarity 1
	// for that function under the deterministic mock embedder.
	target := &models.Function{ID: "1", Package: "config", Name: "LoadConfig", Signature: "(path string) (*Config, error)", Doc: "LoadConfig reads the configuration file."}
	resp, err := engine.Search(ctx, &models.SearchQuery{Query: target.EmbeddingText(), KeywordWeight: 0, SemanticWeight: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	if resp.Results[0].Function.ID != "1" {
		t.Errorf("top result = %s, want 1", resp.Results[0].Function.ID)
	}
	if resp.Results[0].SemanticScore < 0.99 {
		t.Errorf("semantic score = %v, want ~1", resp.Results[0].SemanticScore)
	}
}

func TestEngine_SearchEmptyIndex(t *testing.T) {
	engine, _ := testEngine(t)
	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "anything"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
}

func TestEngine_SearchValidatesQuery(t *testing.T) {
	engine, _ := testEngine(t)
	if _, err := engine.Search(context.Background(), &models.SearchQuery{Query: ""}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestEngine_UpdateConfigPersists(t *testing.T) {
	engine, store := testEngine(t)
	ctx := context.Background()
	cfg := vector.DefaultConfig()
	cfg.Seed = 42
	cfg.ApproximationLevel = vector.ApproximationAccurate
	if err := engine.UpdateConfig(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.LoadConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.ApproximationLevel != vector.ApproximationAccurate {
		t.Errorf("persisted config = %+v", loaded)
	}
}

func TestEngine_SnapshotStats(t *testing.T) {
	engine, store := testEngine(t)
	seedFunctions(t, store)
	ctx := context.Background()
	if err := engine.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}
	snap, err := engine.SnapshotStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Stats.TotalVectors != 3 {
		t.Errorf("snapshot TotalVectors = %d, want 3", snap.Stats.TotalVectors)
	}
	snaps, err := store.ListStatsSnapshots(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Errorf("snapshots = %d, want 1", len(snaps))
	}
}
