package vectorstore

import (
	"context"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// InMemory is a process-local Store backed by a map. Queries are a linear
// scan with cosine scoring; fine for tests, demos and small collections.
// Safe for concurrent use.
type InMemory struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewInMemory creates an empty in-memory vector store.
func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[string]Document)}
}

// Upsert implements Store.
func (s *InMemory) Upsert(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := doc
	stored.Vector = make([]float64, len(doc.Vector))
	copy(stored.Vector, doc.Vector)
	if doc.Metadata != nil {
		stored.Metadata = make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			stored.Metadata[k] = v
		}
	}
	s.docs[doc.ID] = stored
	return nil
}

// Query implements Store. Results are ordered by descending cosine
// similarity; ties break by id for determinism.
func (s *InMemory) Query(_ context.Context, vector []float64, limit int, filter Filter) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.docs))
	for _, doc := range s.docs {
		if !filter.Matches(doc.Metadata) {
			continue
		}
		matches = append(matches, Match{
			ID:       doc.ID,
			Text:     doc.Text,
			Metadata: doc.Metadata,
			Score:    Cosine(vector, doc.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Delete implements Store.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// Len returns the number of stored documents.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths or
// zero vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
