package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codescope/codescope/internal/models"
	"github.com/codescope/codescope/internal/vector"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "codescope.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_FunctionRoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	fn := &models.Function{
		ID:        "fn-1",
		Package:   "parser",
		Name:      "ParseFile",
		Signature: "(path string) (*File, error)",
		Doc:       "ParseFile parses a source file.",
		File:      "parser/parse.go",
		StartLine: 42,
		Metadata:  map[string]interface{}{"complexity": float64(7)},
	}
	if err := s.SaveFunction(ctx, fn); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetFunction(ctx, "fn-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "ParseFile" || got.Package != "parser" || got.StartLine != 42 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Metadata["complexity"] != float64(7) {
		t.Errorf("metadata mismatch: %v", got.Metadata)
	}
}

func TestSQLiteStorage_SaveFunctionUpserts(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	fn := &models.Function{ID: "fn-1", Package: "a", Name: "Old", Signature: "()"}
	if err := s.SaveFunction(ctx, fn); err != nil {
		t.Fatal(err)
	}
	fn.Name = "New"
	if err := s.SaveFunction(ctx, fn); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.CountFunctions(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	got, _ := s.GetFunction(ctx, "fn-1")
	if got.Name != "New" {
		t.Errorf("name = %s, want New", got.Name)
	}
}

func TestSQLiteStorage_ListAndDelete(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		fn := &models.Function{ID: id, Package: "p", Name: id, Signature: "()"}
		if err := s.SaveFunction(ctx, fn); err != nil {
			t.Fatal(err)
		}
	}
	fns, err := s.ListFunctions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fns) != 3 {
		t.Fatalf("list len = %d, want 3", len(fns))
	}
	if err := s.DeleteFunction(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.CountFunctions(ctx); n != 2 {
		t.Errorf("count after delete = %d, want 2", n)
	}
	if _, err := s.GetFunction(ctx, "b"); err == nil {
		t.Error("expected error for deleted function")
	}
}

func TestSQLiteStorage_ConfigRoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	loaded, err := s.LoadConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Fatal("expected nil config before save")
	}

	cfg := vector.DefaultConfig()
	cfg.Algorithm = vector.AlgorithmHybrid
	cfg.Seed = 99
	if err := s.SaveConfig(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err = s.LoadConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.Algorithm != vector.AlgorithmHybrid || loaded.Seed != 99 {
		t.Errorf("loaded = %+v", loaded)
	}

	// Saving again replaces the single row.
	cfg.Seed = 100
	if err := s.SaveConfig(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, _ = s.LoadConfig(ctx)
	if loaded.Seed != 100 {
		t.Errorf("seed = %d, want 100", loaded.Seed)
	}
}

func TestSQLiteStorage_StatsSnapshots(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	stats := vector.Stats{Algorithm: vector.AlgorithmLSH, TotalVectors: 12, TableCount: 8}
	snap, err := s.SaveStatsSnapshot(ctx, stats)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ID == "" {
		t.Error("snapshot id is empty")
	}
	snaps, err := s.ListStatsSnapshots(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	if snaps[0].Stats.TotalVectors != 12 || snaps[0].Stats.Algorithm != vector.AlgorithmLSH {
		t.Errorf("stats mismatch: %+v", snaps[0].Stats)
	}
}
