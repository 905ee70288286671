// Package vectorstore defines the vector persistence boundary used by
// similarity-capable memory: upsert a document with its embedding, query the
// nearest neighbours under cosine distance, always under a metadata filter so
// co-tenants of a shared collection never observe each other's vectors.
package vectorstore

import "context"

// Document is one stored entry: the embedding plus the original text and
// metadata it was derived from.
type Document struct {
	ID       string            `json:"id"`
	Vector   []float64         `json:"vector"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Match is a query hit. Score is cosine similarity in [-1, 1], higher is
// closer.
type Match struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

// Filter restricts reads to documents whose metadata contains every listed
// key/value pair. A nil filter matches everything; stores backing shared
// collections should treat that as a caller error at a higher layer.
type Filter map[string]string

// Store is the minimal vector database contract.
type Store interface {
	Upsert(ctx context.Context, doc Document) error
	Query(ctx context.Context, vector []float64, limit int, filter Filter) ([]Match, error)
	Delete(ctx context.Context, id string) error
}

// Matches reports whether metadata satisfies the filter.
func (f Filter) Matches(metadata map[string]string) bool {
	for k, v := range f {
		if metadata[k] != v {
			return false
		}
	}
	return true
}
