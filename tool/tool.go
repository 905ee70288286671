// Package tool implements the function calling subsystem: named,
// schema-described wrappers around caller functions that a language model can
// invoke during an agent run. Schemas are validated at registration time;
// arguments are validated before every call; execution failures are wrapped
// so the engine can feed them back to the model instead of aborting the loop.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending agent capabilities with external
// functions.
//
// Implementations should provide clear names and descriptions (the model uses
// both to decide invocation), declare a JSON schema for their parameters and
// be safe for concurrent calls: the engine may execute tool calls from a
// single model response in parallel.
type Tool interface {
	// Name returns the unique identifier for this tool. Names must be unique
	// within the set exposed to one model call (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with decoded arguments. The context carries the
	// engine's per-call deadline; implementations doing I/O should honor it.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError represents a recoverable failure during tool execution. The
// engine converts these into error-flagged tool result messages so the model
// can adapt or explain the failure.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes used by the built-in tool implementations.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeTimeout    = "TIMEOUT"
	CodePanic      = "PANIC"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// SchemaError reports a malformed parameter schema. It is raised at
// registration/build time, never at call time.
type SchemaError struct {
	Tool   string   `json:"tool"`
	Causes []string `json:"causes,omitempty"`
}

func (e *SchemaError) Error() string {
	if len(e.Causes) > 0 {
		return fmt.Sprintf("invalid parameter schema for tool %s: %v", e.Tool, e.Causes)
	}
	return fmt.Sprintf("invalid parameter schema for tool %s", e.Tool)
}
