package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrSnapshotNotFound is returned when no snapshot exists for the given scope.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore persists encoded memory snapshots keyed by scope, so a
// conversation can be suspended and resumed across processes. Implementations
// must be safe for concurrent use.
type SnapshotStore interface {
	Save(ctx context.Context, scope Scope, snap *Snapshot) error
	Load(ctx context.Context, scope Scope) (*Snapshot, error)
	List(ctx context.Context, tenantID string) ([]Scope, error)
	Delete(ctx context.Context, scope Scope) error
}

// InMemorySnapshotStore is an in-process SnapshotStore useful for tests,
// examples and single-process prototypes. Snapshots are stored encoded, so
// Load always exercises the same decode path a durable backend would.
type InMemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte // scope key -> encoded snapshot
	scopes    map[string]Scope
}

// NewInMemorySnapshotStore returns an empty in-memory snapshot store.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{
		snapshots: make(map[string][]byte),
		scopes:    make(map[string]Scope),
	}
}

// Save encodes and stores (or overwrites) the snapshot for its scope.
func (s *InMemorySnapshotStore) Save(_ context.Context, scope Scope, snap *Snapshot) error {
	if snap == nil {
		return &WriteError{Store: "snapshot", Err: errNilSnapshot}
	}
	data, err := snap.Encode()
	if err != nil {
		return &WriteError{Store: "snapshot", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[scope.Key()] = data
	s.scopes[scope.Key()] = scope
	return nil
}

// Load decodes the stored snapshot or returns ErrSnapshotNotFound.
func (s *InMemorySnapshotStore) Load(_ context.Context, scope Scope) (*Snapshot, error) {
	s.mu.RLock()
	data, ok := s.snapshots[scope.Key()]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, &ReadError{Store: "snapshot", Err: err}
	}
	return snap, nil
}

// List returns the scopes with stored snapshots for a tenant. An empty
// tenantID lists every scope.
func (s *InMemorySnapshotStore) List(_ context.Context, tenantID string) ([]Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scopes := make([]Scope, 0, len(s.scopes))
	for _, scope := range s.scopes {
		if tenantID != "" && scope.TenantID != tenantID {
			continue
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// Delete removes the snapshot if present or returns ErrSnapshotNotFound.
func (s *InMemorySnapshotStore) Delete(_ context.Context, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[scope.Key()]; !ok {
		return ErrSnapshotNotFound
	}
	delete(s.snapshots, scope.Key())
	delete(s.scopes, scope.Key())
	return nil
}
