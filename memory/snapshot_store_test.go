package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
)

var _ SnapshotStore = (*InMemorySnapshotStore)(nil)

func TestInMemorySnapshotStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewInMemorySnapshotStore()
	ctx := context.Background()
	scope := Scope{TenantID: "t1", ConversationID: "c1"}

	w := NewWindowed(func(o *WindowedOptions) { o.Scope = scope })
	require.NoError(t, w.Add(ctx, core.UserMessage("hello")))
	require.NoError(t, w.Add(ctx, core.AssistantMessage("hi")))
	snap, err := w.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, scope, snap))

	loaded, err := store.Load(ctx, scope)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "hello", loaded.Messages[0].Content)
	assert.Equal(t, scope, loaded.Scope)

	// The resumed conversation matches the suspended one.
	restored := NewWindowed()
	require.NoError(t, restored.Import(ctx, loaded))
	n, err := restored.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInMemorySnapshotStore_ListByTenant(t *testing.T) {
	store := NewInMemorySnapshotStore()
	ctx := context.Background()

	for _, scope := range []Scope{
		{TenantID: "t1", ConversationID: "c1"},
		{TenantID: "t1", ConversationID: "c2"},
		{TenantID: "t2", ConversationID: "c1"},
	} {
		require.NoError(t, store.Save(ctx, scope, &Snapshot{Scope: scope}))
	}

	scopes, err := store.List(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, scopes, 2)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemorySnapshotStore_Delete(t *testing.T) {
	store := NewInMemorySnapshotStore()
	ctx := context.Background()
	scope := Scope{TenantID: "t", ConversationID: "c"}

	require.ErrorIs(t, store.Delete(ctx, scope), ErrSnapshotNotFound)

	require.NoError(t, store.Save(ctx, scope, &Snapshot{Scope: scope}))
	require.NoError(t, store.Delete(ctx, scope))

	_, err := store.Load(ctx, scope)
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestInMemorySnapshotStore_SaveNil(t *testing.T) {
	store := NewInMemorySnapshotStore()
	require.Error(t, store.Save(context.Background(), Scope{}, nil))
}
