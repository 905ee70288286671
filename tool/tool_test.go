package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Tool = (*FunctionTool)(nil)

func echoFn(_ context.Context, args map[string]any) (any, error) {
	return args["text"], nil
}

func TestNewFunctionTool_Validation(t *testing.T) {
	_, err := NewFunctionTool("", "desc", nil, echoFn)
	var se *SchemaError
	require.ErrorAs(t, err, &se)

	_, err = NewFunctionTool("echo", "desc", nil, nil)
	require.ErrorAs(t, err, &se)

	ft, err := NewFunctionTool("echo", "desc", nil, echoFn)
	require.NoError(t, err)
	assert.Equal(t, "echo", ft.Name())
	assert.Equal(t, "desc", ft.Description())
	assert.NotNil(t, ft.Parameters())
}

func TestFunctionTool_Call_ValidatesArguments(t *testing.T) {
	ft, err := NewFunctionTool("echo", "Echo text", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}, echoFn)
	require.NoError(t, err)

	ctx := context.Background()

	out, err := ft.Call(ctx, map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = ft.Call(ctx, map[string]any{})
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeValidation, te.Code)
	assert.Equal(t, "echo", te.Tool)

	_, err = ft.Call(ctx, map[string]any{"text": 42})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeValidation, te.Code)
}

func TestFunctionTool_Call_WrapsExecutionError(t *testing.T) {
	ft, err := NewFunctionTool("fail", "always fails", nil,
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("downstream unavailable")
		})
	require.NoError(t, err)

	_, err = ft.Call(context.Background(), nil)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeExecution, te.Code)
	assert.Contains(t, te.Message, "downstream unavailable")
}

func TestFunctionTool_Call_PassesThroughToolError(t *testing.T) {
	custom := NewToolError("custom", "rate limited", "RATE_LIMIT")
	ft, err := NewFunctionTool("custom", "custom error", nil,
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, custom
		})
	require.NoError(t, err)

	_, err = ft.Call(context.Background(), nil)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Same(t, custom, te)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type sumArgs struct {
		A float64 `json:"a" description:"First addend"`
		B float64 `json:"b" description:"Second addend"`
	}

	ft, err := NewFunctionToolFromStruct("calculate_sum", "Add two numbers", sumArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		})
	require.NoError(t, err)

	params := ft.Parameters()
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")

	out, err := ft.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, out)
}

func TestFunctionTool_ParametersIsolatedFromCallers(t *testing.T) {
	ft, err := NewFunctionTool("echo", "Echo text", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}, echoFn)
	require.NoError(t, err)

	params := ft.Parameters()
	params["type"] = "array"
	params["properties"].(map[string]any)["text"].(map[string]any)["type"] = "number"
	params["required"].([]string)[0] = "other"

	fresh := ft.Parameters()
	assert.Equal(t, "object", fresh["type"])
	assert.Equal(t, "string", fresh["properties"].(map[string]any)["text"].(map[string]any)["type"])
	assert.Equal(t, []string{"text"}, fresh["required"])

	// The compiled validator is equally unaffected.
	_, err = ft.Call(context.Background(), map[string]any{"text": "hello"})
	require.NoError(t, err)
}

func TestBuilder(t *testing.T) {
	base := New("get_weather", "Get weather for a city", func(_ context.Context, args map[string]any) (any, error) {
		return "sunny in " + args["city"].(string), nil
	})

	ft, err := base.
		WithParameter("city", "string", "City name", true).
		WithParameter("unit", "string", "celsius or fahrenheit", false).
		Build()
	require.NoError(t, err)

	params := ft.Parameters()
	assert.Equal(t, []string{"city"}, params["required"])

	out, err := ft.Call(context.Background(), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", out)

	_, err = ft.Call(context.Background(), map[string]any{"unit": "celsius"})
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeValidation, te.Code)
}

func TestBuilder_Persistent(t *testing.T) {
	base := New("t", "d", echoFn).WithParameter("a", "string", "", true)
	branch := base.WithParameter("b", "string", "", true)

	baseTool, err := base.Build()
	require.NoError(t, err)
	branchTool, err := branch.Build()
	require.NoError(t, err)

	baseProps := baseTool.Parameters()["properties"].(map[string]any)
	branchProps := branchTool.Parameters()["properties"].(map[string]any)
	assert.Len(t, baseProps, 1)
	assert.Len(t, branchProps, 2)
}

func TestBuilder_DuplicateParameter(t *testing.T) {
	_, err := New("t", "d", echoFn).
		WithParameter("a", "string", "", true).
		WithParameter("a", "number", "", false).
		Build()
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "t", se.Tool)
}
