package embedding

import (
	"context"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("func A()", []float32{1, 2})
	got, ok := c.Get("func A()")
	if !ok || len(got) != 2 || got[0] != 1 {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if _, ok := c.Get("func B()"); ok {
		t.Error("unexpected hit for missing key")
	}
}

func TestEmbeddingCache_Eviction(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})
	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, err := e.Embed(ctx, "func Parse()")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "func Parse()")
	other, _ := e.Embed(ctx, "func Render()")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text produced different embeddings")
		}
	}
	same := true
	for i := range a {
		if a[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
	if len(a) != 16 {
		t.Errorf("dimension = %d, want 16", len(a))
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	e := NewMockEmbedder(32)
	emb, err := e.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("squared norm = %v, want ~1", sum)
	}
}
