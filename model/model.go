// Package model defines the abstract language-model capability the engine
// depends on: a completion call that returns either terminal content or a
// list of tool calls, and an embedding call used by similarity-capable
// memory. Provider adapters live in subpackages (openai, anthropic, ollama);
// nothing in the engine branches on a concrete vendor.
package model

import (
	"context"

	"github.com/hupe1980/agentloop/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the engine.
type Request struct {
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
	Params   map[string]any   `json:"params,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the outcome of one completion call. Either Content is terminal
// text or ToolCalls lists the invocations the model wants executed.
type Response struct {
	ID           string          `json:"id"`
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage     `json:"usage,omitempty"`
	Raw          any             `json:"-"` // provider payload, exposed through the raw output format
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "ollama", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation. A completion
// is one in-flight operation; the engine never issues speculative parallel
// calls for a single loop iteration.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Streamer is implemented by models that can deliver completion text
// incrementally. Chunks must arrive in the order the equivalent buffered
// Complete would produce them; the returned Response is the buffered whole.
type Streamer interface {
	Stream(ctx context.Context, req Request, onChunk func(chunk string) error) (*Response, error)
}

// Embedder converts text into a vector. Used only by Vector/Hybrid memory.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
