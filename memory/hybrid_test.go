package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/vectorstore"
)

func newTestHybrid(t *testing.T, optFns ...func(o *HybridOptions)) (*Hybrid, *model.MockEmbedder) {
	t.Helper()
	embedder := model.NewMockEmbedder(3)
	vec := NewVector(embedder, vectorstore.NewInMemory())
	return NewHybrid(vec, optFns...), embedder
}

func TestHybrid_CombinesRecencyAndSimilarity(t *testing.T) {
	h, embedder := newTestHybrid(t, func(o *HybridOptions) {
		o.RecentCount = 2
		o.RelevantCount = 2
		o.MaxTotal = 4
	})
	ctx := context.Background()

	// An old but relevant message, then filler, then two recent ones.
	embedder.SetVector("the door code is 4711", []float64{1, 0, 0})
	embedder.SetVector("door code?", []float64{1, 0, 0})
	old := core.UserMessage("the door code is 4711")
	require.NoError(t, h.Add(ctx, old))
	for i := 0; i < 3; i++ {
		filler := core.UserMessage(fmt.Sprintf("filler %d", i))
		embedder.SetVector(filler.Content, []float64{0, 1, 0})
		require.NoError(t, h.Add(ctx, filler))
	}

	got, err := h.Relevant(ctx, "door code?", 4)
	require.NoError(t, err)

	ids := make(map[string]bool, len(got))
	for _, m := range got {
		ids[m.ID] = true
	}
	// The two most recent filler messages are present, and so is the old
	// relevant one despite falling outside the recency window.
	assert.True(t, ids[old.ID], "relevant message missing: %#v", got)
	assert.Equal(t, "filler 1", got[0].Content)
	assert.Equal(t, "filler 2", got[1].Content)
}

func TestHybrid_DeduplicatesOverlap(t *testing.T) {
	h, embedder := newTestHybrid(t, func(o *HybridOptions) {
		o.RecentCount = 3
		o.RelevantCount = 3
		o.MaxTotal = 6
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		msg := core.UserMessage(fmt.Sprintf("m%d", i))
		embedder.SetVector(msg.Content, []float64{1, 0, 0})
		require.NoError(t, h.Add(ctx, msg))
	}
	embedder.SetVector("query", []float64{1, 0, 0})

	// Recent and relevant sets fully overlap; each message appears once.
	got, err := h.Relevant(ctx, "query", 6)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestHybrid_CapsCombinedResult(t *testing.T) {
	h, embedder := newTestHybrid(t, func(o *HybridOptions) {
		o.RecentCount = 4
		o.RelevantCount = 4
		o.MaxTotal = 3
	})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		msg := core.UserMessage(fmt.Sprintf("m%d", i))
		embedder.SetVector(msg.Content, []float64{float64(i), 1, 0})
		require.NoError(t, h.Add(ctx, msg))
	}
	embedder.SetVector("q", []float64{1, 1, 0})

	got, err := h.Recall(ctx, "q")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 3)
}

func TestHybrid_DelegatesStorage(t *testing.T) {
	h, _ := newTestHybrid(t)
	ctx := context.Background()

	require.NoError(t, h.Add(ctx, core.UserMessage("a")))
	require.NoError(t, h.Add(ctx, core.UserMessage("b")))

	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := h.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, h.Clear(ctx))
	n, _ = h.Count(ctx)
	assert.Equal(t, 0, n)
}
