package vectorstore

import (
	"context"
	"math"
	"testing"
)

var _ Store = (*InMemory)(nil)

func TestCosine(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: expected 1, got %f", got)
	}
	if got := Cosine([]float64{1, 0}, []float64{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := Cosine([]float64{1, 0}, []float64{1, 0, 0}); got != 0 {
		t.Fatalf("mismatched lengths: expected 0, got %f", got)
	}
	if got := Cosine([]float64{0, 0}, []float64{1, 0}); got != 0 {
		t.Fatalf("zero vector: expected 0, got %f", got)
	}
}

func TestInMemory_QueryOrdering(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	docs := []Document{
		{ID: "far", Vector: []float64{0, 1}, Text: "far"},
		{ID: "near", Vector: []float64{1, 0.1}, Text: "near"},
		{ID: "exact", Vector: []float64{1, 0}, Text: "exact"},
	}
	for _, d := range docs {
		if err := s.Upsert(ctx, d); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	matches, err := s.Query(ctx, []float64{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "exact" || matches[1].ID != "near" {
		t.Fatalf("unexpected order: %q, %q", matches[0].ID, matches[1].ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatalf("scores not descending: %f < %f", matches[0].Score, matches[1].Score)
	}
}

func TestInMemory_Filter(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	_ = s.Upsert(ctx, Document{ID: "a", Vector: []float64{1, 0}, Metadata: map[string]string{"tenant_id": "t1"}})
	_ = s.Upsert(ctx, Document{ID: "b", Vector: []float64{1, 0}, Metadata: map[string]string{"tenant_id": "t2"}})

	matches, err := s.Query(ctx, []float64{1, 0}, 10, Filter{"tenant_id": "t1"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Fatalf("filter not applied: %#v", matches)
	}
}

func TestInMemory_UpsertReplacesAndDelete(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	_ = s.Upsert(ctx, Document{ID: "x", Vector: []float64{1, 0}, Text: "v1"})
	_ = s.Upsert(ctx, Document{ID: "x", Vector: []float64{0, 1}, Text: "v2"})
	if s.Len() != 1 {
		t.Fatalf("expected 1 doc after replace, got %d", s.Len())
	}

	matches, _ := s.Query(ctx, []float64{0, 1}, 1, nil)
	if matches[0].Text != "v2" {
		t.Fatalf("expected replaced text, got %q", matches[0].Text)
	}

	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store after delete, got %d", s.Len())
	}
}

func TestInMemory_MutationIsolation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	vec := []float64{1, 0}
	meta := map[string]string{"k": "v"}
	_ = s.Upsert(ctx, Document{ID: "x", Vector: vec, Metadata: meta})

	// Caller mutations after Upsert must not leak into the store.
	vec[0] = 0
	meta["k"] = "changed"

	matches, _ := s.Query(ctx, []float64{1, 0}, 1, Filter{"k": "v"})
	if len(matches) != 1 {
		t.Fatalf("expected stored copy to be isolated, got %#v", matches)
	}
	if matches[0].Score < 0.99 {
		t.Fatalf("stored vector was mutated: score %f", matches[0].Score)
	}
}
