package memory

import (
	"context"

	"github.com/hupe1980/agentloop/core"
)

// HybridOptions configure a Hybrid store.
type HybridOptions struct {
	// RecentCount is how many most-recent messages each query contributes.
	RecentCount int
	// RelevantCount is how many semantically relevant messages each query
	// contributes.
	RelevantCount int
	// MaxTotal caps the combined, de-duplicated result.
	MaxTotal int
}

// Hybrid delegates storage to a Vector store and combines, per query, a fixed
// number of most-recent messages with a fixed number of semantically relevant
// ones, de-duplicated by message identity before the combined list is capped.
type Hybrid struct {
	vector    *Vector
	recentN   int
	relevantN int
	maxTotal  int
}

// NewHybrid creates a Hybrid store over an existing Vector store.
func NewHybrid(vector *Vector, optFns ...func(o *HybridOptions)) *Hybrid {
	opts := HybridOptions{
		RecentCount:   4,
		RelevantCount: 4,
		MaxTotal:      6,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RecentCount < 0 {
		opts.RecentCount = 0
	}
	if opts.RelevantCount < 0 {
		opts.RelevantCount = 0
	}
	if opts.MaxTotal < 1 {
		opts.MaxTotal = opts.RecentCount + opts.RelevantCount
	}
	return &Hybrid{
		vector:    vector,
		recentN:   opts.RecentCount,
		relevantN: opts.RelevantCount,
		maxTotal:  opts.MaxTotal,
	}
}

// Add implements Store.
func (h *Hybrid) Add(ctx context.Context, msg core.Message) error { return h.vector.Add(ctx, msg) }

// All implements Store.
func (h *Hybrid) All(ctx context.Context) ([]core.Message, error) { return h.vector.All(ctx) }

// Recent implements Store.
func (h *Hybrid) Recent(ctx context.Context, n int) ([]core.Message, error) {
	return h.vector.Recent(ctx, n)
}

// Relevant implements Store: recency plus similarity, de-duplicated by
// message id, capped to the smaller of limit and MaxTotal. Recent messages
// keep their chronological order; relevant extras follow in score order.
func (h *Hybrid) Relevant(ctx context.Context, query string, limit int) ([]core.Message, error) {
	total := h.maxTotal
	if limit > 0 && limit < total {
		total = limit
	}

	recent, err := h.vector.Recent(ctx, h.recentN)
	if err != nil {
		return nil, err
	}
	relevant, err := h.vector.Relevant(ctx, query, h.relevantN)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(recent)+len(relevant))
	combined := make([]core.Message, 0, len(recent)+len(relevant))
	for _, m := range recent {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		combined = append(combined, m)
	}
	for _, m := range relevant {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		combined = append(combined, m)
	}

	if len(combined) > total {
		combined = combined[:total]
	}
	return combined, nil
}

// Recall implements Store using the configured counts.
func (h *Hybrid) Recall(ctx context.Context, query string) ([]core.Message, error) {
	return h.Relevant(ctx, query, h.maxTotal)
}

// Clear implements Store.
func (h *Hybrid) Clear(ctx context.Context) error { return h.vector.Clear(ctx) }

// Count implements Store.
func (h *Hybrid) Count(ctx context.Context) (int, error) { return h.vector.Count(ctx) }

// Export implements Store.
func (h *Hybrid) Export(ctx context.Context) (*Snapshot, error) { return h.vector.Export(ctx) }

// Import implements Store.
func (h *Hybrid) Import(ctx context.Context, snap *Snapshot) error {
	return h.vector.Import(ctx, snap)
}

// Scope implements Store.
func (h *Hybrid) Scope() Scope { return h.vector.Scope() }
