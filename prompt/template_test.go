package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
)

func TestTemplate_Render(t *testing.T) {
	tmpl := New().
		WithSystem("You are ${persona}.").
		WithUser("Tell me about ${topic}.")

	messages, err := tmpl.Render(map[string]any{"persona": "a pirate", "topic": "sailing"})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, core.RoleSystem, messages[0].Role)
	assert.Equal(t, "You are a pirate.", messages[0].Content)
	assert.Equal(t, core.RoleUser, messages[1].Role)
	assert.Equal(t, "Tell me about sailing.", messages[1].Content)
}

func TestTemplate_BindingPrecedence(t *testing.T) {
	tmpl := New().WithUser("${greeting}, ${name}").
		Bind("greeting", "Hello").
		Bind("name", "stored")

	// Call-time bindings win over stored ones, key by key.
	messages, err := tmpl.Render(map[string]any{"name": "override"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, override", messages[0].Content)
}

func TestTemplate_MissingBinding(t *testing.T) {
	tmpl := New().WithUser("value: ${missing}")

	_, err := tmpl.Render(nil)
	var mbe *MissingBindingError
	require.ErrorAs(t, err, &mbe)
	assert.Equal(t, "missing", mbe.Key)
}

func TestTemplate_ContextPlaceholder(t *testing.T) {
	tmpl := New().WithSystem("Context: ${context}")

	// Empty context renders an empty JSON object, never an error.
	messages, err := tmpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "Context: {}", messages[0].Content)

	withCtx := tmpl.WithContext(map[string]any{"tenant": "acme"})
	messages, err = withCtx.Render(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tenant":"acme"}`, messages[0].Content[len("Context: "):])
}

func TestTemplate_ContextNotOverridableByBindings(t *testing.T) {
	tmpl := New().WithUser("${context}").WithContext(map[string]any{"k": "v"})

	messages, err := tmpl.Render(map[string]any{"context": "spoofed"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, messages[0].Content)
}

func TestTemplate_Persistence(t *testing.T) {
	base := New().WithUser("${x}").Bind("x", "base")
	branch := base.Bind("x", "branch")

	baseOut, err := base.Render(nil)
	require.NoError(t, err)
	branchOut, err := branch.Render(nil)
	require.NoError(t, err)

	assert.Equal(t, "base", baseOut[0].Content)
	assert.Equal(t, "branch", branchOut[0].Content)
}

func TestTemplate_UnterminatedPlaceholder(t *testing.T) {
	tmpl := New().WithUser("cost is ${amount and more")

	messages, err := tmpl.Render(map[string]any{"amount": "5"})
	require.NoError(t, err)
	assert.Equal(t, "cost is ${amount and more", messages[0].Content)
}

func TestTemplate_RenderText(t *testing.T) {
	tmpl := New().Bind("who", "world")
	out, err := tmpl.RenderText("hello ${who}", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}
