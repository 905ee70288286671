package prompt

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentloop/runnable"
)

// Runnable adapts the template into the pipeline contract. Input may be nil
// or a map[string]any of call-time bindings; params contribute additional
// bindings with lower precedence than input.
func (t Template) Runnable() runnable.Runnable {
	return runnable.Func(func(_ context.Context, input any, params map[string]any) (any, error) {
		bindings := make(map[string]any, len(params))
		for k, v := range params {
			bindings[k] = v
		}
		switch in := input.(type) {
		case nil:
		case map[string]any:
			for k, v := range in {
				bindings[k] = v
			}
		default:
			return nil, fmt.Errorf("prompt: unsupported input type %T, want map[string]any", input)
		}
		return t.Render(bindings)
	})
}
