package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool} {
		assert.True(t, ValidRole(r), "role %s should be valid", r)
	}
	assert.False(t, ValidRole("moderator"))
	assert.False(t, ValidRole(""))
}

func TestConstructors(t *testing.T) {
	u := UserMessage("hi")
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	call := ToolCall{ID: "c1", Name: "get_time", Arguments: "{}"}
	tr := ToolResultMessage(call, "3pm", true)
	assert.Equal(t, RoleTool, tr.Role)
	assert.Equal(t, "c1", tr.ToolCallID)
	assert.Equal(t, "get_time", tr.ToolName)
	assert.True(t, tr.IsError)

	// IDs are unique per message.
	assert.NotEqual(t, UserMessage("a").ID, UserMessage("a").ID)
}

func TestMessageClone(t *testing.T) {
	m := AssistantMessage("answer")
	m.ToolCalls = []ToolCall{{ID: "1", Name: "t"}}
	m.Metadata = map[string]any{"k": "v"}

	c := m.Clone()
	c.ToolCalls[0].Name = "changed"
	c.Metadata["k"] = "changed"

	assert.Equal(t, "t", m.ToolCalls[0].Name)
	assert.Equal(t, "v", m.Metadata["k"])
}

func TestCloneMessages(t *testing.T) {
	assert.Nil(t, CloneMessages(nil))

	msgs := []Message{UserMessage("a"), AssistantMessage("b")}
	cloned := CloneMessages(msgs)
	require.Len(t, cloned, 2)
	cloned[0].Content = "mutated"
	assert.Equal(t, "a", msgs[0].Content)
}
