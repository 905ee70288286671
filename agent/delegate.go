package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentloop/tool"
)

// delegateTool wraps a sub-agent as a callable tool. Invoking it runs the
// sub-agent's own loop to completion and returns its final content.
type delegateTool struct {
	sub *Agent
}

func newDelegateTool(sub *Agent) *delegateTool {
	return &delegateTool{sub: sub}
}

// Name implements tool.Tool.
func (d *delegateTool) Name() string {
	return DelegateToolName(d.sub.Name())
}

// Description implements tool.Tool.
func (d *delegateTool) Description() string {
	if desc := d.sub.Description(); desc != "" {
		return fmt.Sprintf("Delegate a task to the %s agent. %s", d.sub.Name(), desc)
	}
	return fmt.Sprintf("Delegate a task to the %s agent.", d.sub.Name())
}

// Parameters implements tool.Tool.
func (d *delegateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task": map[string]any{
				"type":        "string",
				"description": "The task or question to hand to the agent, phrased as a complete request.",
			},
		},
		"required": []string{"task"},
	}
}

// Call implements tool.Tool. Sub-agent errors propagate as execution errors
// so the parent loop records them as error-flagged tool results.
func (d *delegateTool) Call(ctx context.Context, args map[string]any) (any, error) {
	task, ok := args["task"].(string)
	if !ok || task == "" {
		return nil, tool.NewToolError(d.Name(), "task must be a non-empty string", tool.CodeValidation)
	}

	result, err := d.sub.Run(ctx, task)
	if err != nil {
		return nil, tool.NewToolError(d.Name(), fmt.Sprintf("sub-agent %s: %v", d.sub.Name(), err), tool.CodeExecution)
	}
	return result.Content, nil
}
