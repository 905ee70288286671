package model

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
)

var (
	_ Model    = (*MockModel)(nil)
	_ Streamer = (*MockModel)(nil)
	_ Embedder = (*MockEmbedder)(nil)
)

func TestMockModel_ScriptedResponses(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.EnqueueToolCalls(core.ToolCall{ID: "1", Name: "get_time", Arguments: "{}"})
	m.EnqueueContent("It is 3pm")

	ctx := context.Background()

	resp, err := m.Complete(ctx, Request{Messages: []core.Message{core.UserMessage("time?")}})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_time", resp.ToolCalls[0].Name)

	resp, err = m.Complete(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, "It is 3pm", resp.Content)
	assert.Empty(t, resp.ToolCalls)

	assert.Len(t, m.Requests(), 2)
}

func TestMockModel_KeyedResponses(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.AddResponse("Hi", "Hello")

	resp, err := m.Complete(context.Background(), Request{
		Messages: []core.Message{core.UserMessage("Hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.Content)
}

func TestMockModel_Stream(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.EnqueueContent("abc")

	var sb strings.Builder
	resp, err := m.Stream(context.Background(), Request{}, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", sb.String())
	assert.Equal(t, "abc", resp.Content)
}

type flakyModel struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyModel) Complete(_ context.Context, _ Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return &Response{Content: "ok"}, nil
}

func (f *flakyModel) Info() Info { return Info{Name: "flaky", Provider: "test"} }

func TestWithRetry_RecoversTransientFailure(t *testing.T) {
	inner := &flakyModel{failures: 2}
	m := WithRetry(inner, func(o *RetryOptions) {
		o.MaxRetries = 2
		o.BaseDelay = time.Millisecond
	})

	resp, err := m.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestWithRetry_ExhaustedBudget(t *testing.T) {
	inner := &flakyModel{failures: 10}
	m := WithRetry(inner, func(o *RetryOptions) {
		o.MaxRetries = 1
		o.BaseDelay = time.Millisecond
	})

	_, err := m.Complete(context.Background(), Request{})
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "test", ce.Provider)
	assert.Equal(t, 2, ce.Attempts)
	assert.Equal(t, 2, inner.calls)
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(4)
	e.SetVector("pinned", []float64{1, 0, 0, 0})

	ctx := context.Background()

	vec, err := e.Embed(ctx, "pinned")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0}, vec)

	a, err := e.Embed(ctx, "some text")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "some text")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 4)
}
