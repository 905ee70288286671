package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message. The set is closed; adapters must
// map provider-specific roles onto one of these values.
type Role string

const (
	// RoleSystem marks instructions injected by the caller or the engine.
	RoleSystem Role = "system"
	// RoleUser marks end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks model output, including tool call requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of a tool execution fed back to the model.
	RoleTool Role = "tool"
)

// ValidRole reports whether r is a member of the closed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall is a single function invocation requested by the model. ID is the
// correlation key that matches the eventual result message back into the
// conversation; it lives for exactly one loop iteration.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // JSON-encoded argument payload
}

// Message is one entry in an ordered conversation. Ordering within a list is
// significant and must be preserved by everything that handles slices of
// Message.
type Message struct {
	ID         string         `json:"id"`
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`   // set on assistant messages requesting tools
	ToolCallID string         `json:"tool_call_id,omitempty"` // set on tool result messages
	ToolName   string         `json:"tool_name,omitempty"`
	IsError    bool           `json:"is_error,omitempty"`   // tool result carries a recovered failure
	IsSummary  bool           `json:"is_summary,omitempty"` // message is a memory compaction summary
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewMessage creates a message with a fresh id and UTC timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message { return NewMessage(RoleSystem, content) }

// UserMessage creates a user message.
func UserMessage(content string) Message { return NewMessage(RoleUser, content) }

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message { return NewMessage(RoleAssistant, content) }

// ToolResultMessage creates a tool result correlated to the originating call.
// isError flags recovered execution failures so the model can adapt.
func ToolResultMessage(call ToolCall, content string, isError bool) Message {
	m := NewMessage(RoleTool, content)
	m.ToolCallID = call.ID
	m.ToolName = call.Name
	m.IsError = isError
	return m
}

// Clone returns a deep copy. Metadata and tool calls are copied so mutation
// of the clone never leaks into the original.
func (m Message) Clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// CloneMessages deep-copies a message slice preserving order.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
