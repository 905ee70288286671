// Package memory implements the pluggable conversation memory abstraction
// behind the agent engine: an ordered message sequence with strategy-specific
// retention (fixed window, LLM-driven summarization, embedding similarity,
// and a hybrid of recency and similarity) behind one interface.
//
// Every store is created once per conversation, written by one agent at a
// time (writes are serialized internally) and cleared explicitly by the
// caller. Tenant/conversation scoping is fixed at construction and honored by
// every read and write.
package memory

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/hupe1980/agentloop/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNilSnapshot = errors.New("nil snapshot")

func errInvalidRole(r core.Role) error {
	return fmt.Errorf("invalid role %q", r)
}

// Scope isolates one logical conversation's data within shared storage.
// A zero Scope means the store is private and unfiltered.
type Scope struct {
	TenantID       string `json:"tenant_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// IsZero reports whether no scoping is configured.
func (s Scope) IsZero() bool { return s == Scope{} }

// Key returns a stable string form used as a storage partition key.
func (s Scope) Key() string { return s.TenantID + "/" + s.ConversationID }

// Store is the common memory contract. Relevant is meaningful only for
// similarity-capable implementations; the others degrade to recency.
// Recall is the engine-facing read used once per outbound message build:
// history-style stores return their full context, retrieval-style stores
// return messages relevant to the query.
type Store interface {
	Add(ctx context.Context, msg core.Message) error
	All(ctx context.Context) ([]core.Message, error)
	Recent(ctx context.Context, n int) ([]core.Message, error)
	Relevant(ctx context.Context, query string, limit int) ([]core.Message, error)
	Recall(ctx context.Context, query string) ([]core.Message, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Export(ctx context.Context) (*Snapshot, error)
	Import(ctx context.Context, snap *Snapshot) error
	Scope() Scope
}

// Snapshot is the persisted shape of a store: the ordered message list, the
// scope, and for summarizing stores the single summary message. Export must
// return exactly the structure Import accepts.
type Snapshot struct {
	Scope    Scope          `json:"scope"`
	Messages []core.Message `json:"messages"`
	Summary  *core.Message  `json:"summary,omitempty"`
}

// Encode serializes the snapshot to JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode memory snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot deserializes a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode memory snapshot: %w", err)
	}
	return &snap, nil
}

// ReadError reports a failed memory read. The engine degrades it to an empty
// context unless the caller opted into strict mode.
type ReadError struct {
	Store string
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("memory read failed on %s: %v", e.Store, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed memory write. Always surfaced: silently losing
// a committed turn is unacceptable.
type WriteError struct {
	Store string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("memory write failed on %s: %v", e.Store, e.Err)
}

// Unwrap exposes the underlying error.
func (e *WriteError) Unwrap() error { return e.Err }
