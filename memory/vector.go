package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/vectorstore"
)

// VectorOptions configure a Vector store.
type VectorOptions struct {
	// Scope tags the store and becomes a mandatory filter on every vector
	// read and write, so co-tenants of a shared collection stay isolated.
	Scope Scope
	// MinScore drops matches below this cosine similarity. Zero keeps all.
	MinScore float64
	// RecallLimit bounds how many messages Recall contributes to the context.
	RecallLimit int
	// Logger receives retrieval telemetry. Defaults to NoOp.
	Logger logging.Logger
}

// Vector embeds every added message and stores it with its text and metadata
// in a vectorstore backend. Relevant performs nearest-neighbour search under
// cosine similarity and returns the top matches above the score floor.
// The ordered history is kept locally so All/Recent stay exact.
type Vector struct {
	mu          sync.RWMutex
	scope       Scope
	embedder    model.Embedder
	store       vectorstore.Store
	minScore    float64
	recallLimit int
	logger      logging.Logger
	messages    []core.Message
	byID        map[string]int // message id -> index in messages
}

// NewVector creates a Vector store over the given embedder and backend.
func NewVector(embedder model.Embedder, store vectorstore.Store, optFns ...func(o *VectorOptions)) *Vector {
	opts := VectorOptions{
		RecallLimit: 5,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RecallLimit < 1 {
		opts.RecallLimit = 5
	}
	return &Vector{
		scope:       opts.Scope,
		embedder:    embedder,
		store:       store,
		minScore:    opts.MinScore,
		recallLimit: opts.RecallLimit,
		logger:      opts.Logger,
		byID:        make(map[string]int),
	}
}

// filter builds the mandatory tenant/conversation predicate.
func (v *Vector) filter() vectorstore.Filter {
	f := vectorstore.Filter{}
	if v.scope.TenantID != "" {
		f["tenant_id"] = v.scope.TenantID
	}
	if v.scope.ConversationID != "" {
		f["conversation_id"] = v.scope.ConversationID
	}
	return f
}

// Add implements Store: embed, upsert, then record in the ordered history.
func (v *Vector) Add(ctx context.Context, msg core.Message) error {
	if !core.ValidRole(msg.Role) {
		return &WriteError{Store: "vector", Err: errInvalidRole(msg.Role)}
	}

	vec, err := v.embedder.Embed(ctx, msg.Content)
	if err != nil {
		return &WriteError{Store: "vector", Err: fmt.Errorf("embed message: %w", err)}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	metadata := map[string]string{"role": string(msg.Role)}
	for k, val := range v.filter() {
		metadata[k] = val
	}
	doc := vectorstore.Document{
		ID:       msg.ID,
		Vector:   vec,
		Text:     msg.Content,
		Metadata: metadata,
	}
	if err := v.store.Upsert(ctx, doc); err != nil {
		return &WriteError{Store: "vector", Err: fmt.Errorf("upsert vector: %w", err)}
	}

	if idx, exists := v.byID[msg.ID]; exists {
		v.messages[idx] = msg.Clone()
		return nil
	}
	v.byID[msg.ID] = len(v.messages)
	v.messages = append(v.messages, msg.Clone())
	return nil
}

// All implements Store.
func (v *Vector) All(_ context.Context) ([]core.Message, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return core.CloneMessages(v.messages), nil
}

// Recent implements Store.
func (v *Vector) Recent(_ context.Context, n int) ([]core.Message, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if n <= 0 || len(v.messages) == 0 {
		return []core.Message{}, nil
	}
	if n > len(v.messages) {
		n = len(v.messages)
	}
	return core.CloneMessages(v.messages[len(v.messages)-n:]), nil
}

// Relevant implements Store with nearest-neighbour search. Matches below the
// score floor are dropped; results come back in descending score order.
func (v *Vector) Relevant(ctx context.Context, query string, limit int) ([]core.Message, error) {
	if limit <= 0 {
		return []core.Message{}, nil
	}

	vec, err := v.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &ReadError{Store: "vector", Err: fmt.Errorf("embed query: %w", err)}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	matches, err := v.store.Query(ctx, vec, limit, v.filter())
	if err != nil {
		return nil, &ReadError{Store: "vector", Err: fmt.Errorf("query vectors: %w", err)}
	}

	out := make([]core.Message, 0, len(matches))
	for _, match := range matches {
		if v.minScore > 0 && match.Score < v.minScore {
			continue
		}
		idx, ok := v.byID[match.ID]
		if !ok {
			continue
		}
		out = append(out, v.messages[idx].Clone())
	}

	v.logger.Debug("memory.vector.relevant",
		"scope", v.scope.Key(),
		"matches", len(matches),
		"returned", len(out),
	)
	return out, nil
}

// Recall implements Store: retrieved messages, not the full history.
func (v *Vector) Recall(ctx context.Context, query string) ([]core.Message, error) {
	return v.Relevant(ctx, query, v.recallLimit)
}

// Clear implements Store, removing this scope's vectors from the backend.
func (v *Vector) Clear(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, msg := range v.messages {
		if err := v.store.Delete(ctx, msg.ID); err != nil {
			return &WriteError{Store: "vector", Err: fmt.Errorf("delete vector %s: %w", msg.ID, err)}
		}
	}
	v.messages = nil
	v.byID = make(map[string]int)
	return nil
}

// Count implements Store.
func (v *Vector) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.messages), nil
}

// Export implements Store.
func (v *Vector) Export(_ context.Context) (*Snapshot, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return &Snapshot{
		Scope:    v.scope,
		Messages: core.CloneMessages(v.messages),
	}, nil
}

// Import implements Store. Messages are re-embedded into the backend so the
// snapshot stays portable across embedding models.
func (v *Vector) Import(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return &WriteError{Store: "vector", Err: errNilSnapshot}
	}
	if err := v.Clear(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	v.scope = snap.Scope
	v.mu.Unlock()

	for _, msg := range snap.Messages {
		if err := v.Add(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Scope implements Store.
func (v *Vector) Scope() Scope {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scope
}
