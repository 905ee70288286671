package memory

import (
	"context"
	"sync"

	"github.com/hupe1980/agentloop/core"
)

// WindowedOptions configure a Windowed store.
type WindowedOptions struct {
	// MaxMessages bounds the window. Must be positive.
	MaxMessages int
	// Scope tags the store's tenant/conversation identity.
	Scope Scope
}

// Windowed is a FIFO bounded message buffer. Adding beyond MaxMessages evicts
// the oldest non-system messages first; after every Add the invariant
// count <= MaxMessages holds.
//
// Concurrency: single writer, many readers, enforced with an RWMutex.
type Windowed struct {
	mu       sync.RWMutex
	scope    Scope
	max      int
	messages []core.Message
}

// NewWindowed creates a Windowed store with a default window of 50 messages.
func NewWindowed(optFns ...func(o *WindowedOptions)) *Windowed {
	opts := WindowedOptions{MaxMessages: 50}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxMessages < 1 {
		opts.MaxMessages = 1
	}
	return &Windowed{scope: opts.Scope, max: opts.MaxMessages}
}

// Add implements Store.
func (w *Windowed) Add(_ context.Context, msg core.Message) error {
	if !core.ValidRole(msg.Role) {
		return &WriteError{Store: "windowed", Err: errInvalidRole(msg.Role)}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.messages = append(w.messages, msg.Clone())
	for len(w.messages) > w.max {
		w.evictOldest()
	}
	return nil
}

// evictOldest removes the oldest non-system message, falling back to the
// oldest message of any role when only system messages remain.
func (w *Windowed) evictOldest() {
	for i, m := range w.messages {
		if m.Role != core.RoleSystem {
			w.messages = append(w.messages[:i], w.messages[i+1:]...)
			return
		}
	}
	w.messages = w.messages[1:]
}

// All implements Store.
func (w *Windowed) All(_ context.Context) ([]core.Message, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return core.CloneMessages(w.messages), nil
}

// Recent implements Store.
func (w *Windowed) Recent(_ context.Context, n int) ([]core.Message, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n <= 0 || len(w.messages) == 0 {
		return []core.Message{}, nil
	}
	if n > len(w.messages) {
		n = len(w.messages)
	}
	return core.CloneMessages(w.messages[len(w.messages)-n:]), nil
}

// Relevant degrades to recency for this store.
func (w *Windowed) Relevant(ctx context.Context, _ string, limit int) ([]core.Message, error) {
	return w.Recent(ctx, limit)
}

// Recall implements Store: the full window is the context.
func (w *Windowed) Recall(ctx context.Context, _ string) ([]core.Message, error) {
	return w.All(ctx)
}

// Clear implements Store.
func (w *Windowed) Clear(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = nil
	return nil
}

// Count implements Store.
func (w *Windowed) Count(_ context.Context) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.messages), nil
}

// Export implements Store.
func (w *Windowed) Export(_ context.Context) (*Snapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return &Snapshot{
		Scope:    w.scope,
		Messages: core.CloneMessages(w.messages),
	}, nil
}

// Import implements Store. The snapshot's scope is adopted; the window
// invariant is re-established if the snapshot exceeds it.
func (w *Windowed) Import(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return &WriteError{Store: "windowed", Err: errNilSnapshot}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.scope = snap.Scope
	w.messages = core.CloneMessages(snap.Messages)
	for len(w.messages) > w.max {
		w.evictOldest()
	}
	return nil
}

// Scope implements Store.
func (w *Windowed) Scope() Scope {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scope
}
