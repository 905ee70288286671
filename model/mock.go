package model

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/hupe1980/agentloop/core"
)

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses can be scripted in order (Enqueue) or keyed by the last user
// message (AddResponse). Scripted responses win when both are configured.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []*Response
	responses map[string]string
	requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// SetSupportsTools overrides the advertised tool capability.
func (m *MockModel) SetSupportsTools(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info.SupportsTools = v
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a scripted response consumed in FIFO order by Complete.
func (m *MockModel) Enqueue(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// EnqueueContent is shorthand for scripting a plain-content response.
func (m *MockModel) EnqueueContent(content string) {
	m.Enqueue(&Response{Content: content, FinishReason: "stop"})
}

// EnqueueToolCalls is shorthand for scripting a tool-call response.
func (m *MockModel) EnqueueToolCalls(calls ...core.ToolCall) {
	m.Enqueue(&Response{ToolCalls: calls, FinishReason: "tool_calls"})
}

// Requests returns a copy of every request seen so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		resp := m.script[0]
		m.script = m.script[1:]
		return resp, nil
	}

	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == core.RoleUser {
			lastUser = msg.Content
		}
	}
	if full, ok := m.responses[lastUser]; ok {
		return &Response{Content: full, FinishReason: "stop"}, nil
	}
	return &Response{Content: fmt.Sprintf("Mock response to: %s", lastUser), FinishReason: "stop"}, nil
}

// Stream implements Streamer by emitting the buffered content rune by rune.
func (m *MockModel) Stream(ctx context.Context, req Request, onChunk func(chunk string) error) (*Response, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, r := range resp.Content {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := onChunk(string(r)); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Info implements Model.
func (m *MockModel) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// MockEmbedder is a deterministic Embedder for tests. Vectors registered via
// SetVector are returned verbatim; unknown texts hash into a stable
// pseudo-vector of the configured dimension.
type MockEmbedder struct {
	mu      sync.Mutex
	dim     int
	vectors map[string][]float64
}

// NewMockEmbedder creates an embedder producing vectors of the given dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 8
	}
	return &MockEmbedder{dim: dim, vectors: make(map[string][]float64)}
}

// SetVector pins the vector returned for a text.
func (m *MockEmbedder) SetVector(text string, vec []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vec
}

// Embed implements Embedder.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vec, ok := m.vectors[text]; ok {
		out := make([]float64, len(vec))
		copy(out, vec)
		return out, nil
	}
	out := make([]float64, m.dim)
	h := fnv.New64a()
	for i := range out {
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i)})
		out[i] = float64(h.Sum64()%1000)/500.0 - 1.0
	}
	return out, nil
}
