package tool

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hupe1980/agentloop/internal/util"
)

// Func is the callback signature wrapped by FunctionTool.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tool. The parameter schema is compiled once at construction; arguments are
// validated against it before every invocation.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
//
// Error semantics of Call:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	validation failure              -> *ToolError{Code: "VALIDATION_ERROR"}
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	schema      *gojsonschema.Schema
	fn          Func
}

// NewFunctionTool constructs a FunctionTool from an explicit JSON schema and
// function. The schema is compiled immediately; a malformed schema yields a
// *SchemaError so broken tools are rejected at registration, not mid-run.
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) (*FunctionTool, error) {
	if name == "" {
		return nil, &SchemaError{Tool: name, Causes: []string{"tool name must not be empty"}}
	}
	if fn == nil {
		return nil, &SchemaError{Tool: name, Causes: []string{"callback must not be nil"}}
	}
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(parameters))
	if err != nil {
		return nil, &SchemaError{Tool: name, Causes: []string{err.Error()}}
	}

	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		schema:      schema,
		fn:          fn,
	}, nil
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. Convenience for simple argument containers.
//
// Example:
//
//	type SumArgs struct {
//	  A float64 `json:"a" description:"First addend"`
//	  B float64 `json:"b" description:"Second addend"`
//	}
//
//	sumTool, err := NewFunctionToolFromStruct("calculate_sum", "Add two numbers", SumArgs{}, sumFn)
func NewFunctionToolFromStruct(name, description string, structType any, fn Func) (*FunctionTool, error) {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments. The
// returned map is a copy: mutating it does not affect the schema the tool
// validates against or exposes to later callers.
func (t *FunctionTool) Parameters() map[string]any { return copySchema(t.parameters) }

func copySchema(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copySchemaValue(v)
	}
	return out
}

func copySchemaValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copySchema(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copySchemaValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, e := range val {
			out[i] = copySchema(e)
		}
		return out
	default:
		return v
	}
}

// Call validates args against the compiled schema then invokes the wrapped
// function.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}

	result, err := t.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("argument validation failed: %v", err),
			Code:    CodeValidation,
		}
	}
	if !result.Valid() {
		causes := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			causes = append(causes, desc.String())
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("argument validation failed: %v", causes),
			Code:    CodeValidation,
			Details: causes,
		}
	}

	out, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	return out, nil
}
