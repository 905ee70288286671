package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentloop/runnable"
)

// Runnable adapts the agent to the composition interface so it can be chained
// with templates and other runnables. Input must be a string; the output is
// the agent's configured output format.
func (a *Agent) Runnable() runnable.Runnable {
	return &agentRunnable{agent: a}
}

type agentRunnable struct {
	agent *Agent
}

func (r *agentRunnable) Run(ctx context.Context, input any, _ map[string]any) (any, error) {
	text, err := inputText(input)
	if err != nil {
		return nil, err
	}
	result, err := r.agent.Run(ctx, text)
	if err != nil {
		return nil, err
	}
	return result.Output(), nil
}

func (r *agentRunnable) Stream(ctx context.Context, input any, _ map[string]any, onChunk func(chunk any) error) error {
	text, err := inputText(input)
	if err != nil {
		return err
	}
	_, err = r.agent.Stream(ctx, text, func(chunk string) error {
		return onChunk(chunk)
	})
	return err
}

func (r *agentRunnable) To(next runnable.Runnable) runnable.Runnable {
	return runnable.Chain(r, next)
}

func inputText(input any) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("agent input must be a string, got %T", input)
	}
}
