package agent

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sourcegraph/conc/iter"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/tool"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Result is the outcome of a completed run.
type Result struct {
	// Content is the model's final text.
	Content string
	// Messages is the full ordered message list of the run, including
	// intermediate tool results.
	Messages []core.Message
	// Raw is the provider response behind the final content.
	Raw *model.Response

	format OutputFormat
}

// Output returns the result in the agent's configured output format.
func (r *Result) Output() any {
	switch r.format {
	case OutputMessages:
		return r.Messages
	case OutputRaw:
		return r.Raw
	default:
		return r.Content
	}
}

// Run executes one full turn: context assembly, the model/tool loop, and the
// memory commit. The returned Result always carries the requested output
// format; errors are typed per kind, never bare.
func (a *Agent) Run(ctx context.Context, input string) (*Result, error) {
	return a.run(ctx, input, nil)
}

// Stream behaves like Run but forwards completion text chunks as they
// arrive when the model supports streaming. Chunk order matches the order a
// buffered Run would produce.
func (a *Agent) Stream(ctx context.Context, input string, onChunk func(chunk string) error) (*Result, error) {
	return a.run(ctx, input, onChunk)
}

func (a *Agent) run(ctx context.Context, input string, onChunk func(chunk string) error) (*Result, error) {
	start := time.Now()
	a.logger.Debug("agent.run.start", "agent", a.name)

	userMsg := core.UserMessage(input)

	// Memory is read exactly once per run, before the first model call.
	messages, err := a.buildMessages(ctx, input)
	if err != nil {
		return nil, err
	}
	messages = append(messages, userMsg)

	toolDefs := a.toolDefinitions()

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		resp, err := a.callModel(ctx, model.Request{
			Messages: messages,
			Tools:    toolDefs,
			Params:   a.params,
		}, onChunk)
		if err != nil {
			a.logger.Error("agent.model.error", "agent", a.name, "iteration", iteration, "error", err.Error())
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			assistantMsg := core.AssistantMessage(resp.Content)
			messages = append(messages, assistantMsg)

			// The finished turn is committed once; intermediate tool results
			// stay within the loop.
			if err := a.commit(ctx, userMsg, assistantMsg); err != nil {
				return nil, err
			}

			a.logger.Info("agent.run.complete",
				"agent", a.name,
				"iterations", iteration+1,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return &Result{
				Content:  resp.Content,
				Messages: messages,
				Raw:      resp,
				format:   a.outputFormat,
			}, nil
		}

		assistantMsg := core.AssistantMessage(resp.Content)
		assistantMsg.ToolCalls = resp.ToolCalls
		messages = append(messages, assistantMsg)

		// Resolve every call before executing any: an unknown name is fatal
		// and must not run its siblings first.
		for _, call := range resp.ToolCalls {
			if _, ok := a.tools[call.Name]; !ok {
				return nil, &ResolutionError{Agent: a.name, Tool: call.Name}
			}
		}

		results := a.executeToolCalls(ctx, resp.ToolCalls)
		messages = append(messages, results...)
	}

	return nil, &MaxIterationsError{Agent: a.name, Limit: a.maxIterations}
}

// buildMessages assembles the outbound list: system prompt, then context
// from every attached memory, in attachment order. Read failures degrade to
// an empty contribution unless strict mode is on.
func (a *Agent) buildMessages(ctx context.Context, input string) ([]core.Message, error) {
	var messages []core.Message
	if sys := a.systemPrompt(); sys != "" {
		messages = append(messages, core.SystemMessage(sys))
	}
	for _, store := range a.memories {
		recalled, err := store.Recall(ctx, input)
		if err != nil {
			if a.strictMemory {
				return nil, err
			}
			a.logger.Warn("agent.memory.read_degraded", "agent", a.name, "error", err.Error())
			continue
		}
		messages = append(messages, recalled...)
	}
	return messages, nil
}

// callModel performs one bounded completion, streaming when requested and
// supported.
func (a *Agent) callModel(ctx context.Context, req model.Request, onChunk func(chunk string) error) (*model.Response, error) {
	callCtx := ctx
	cancel := func() {}
	if a.modelTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, a.modelTimeout)
	}
	defer cancel()

	if onChunk != nil {
		if s, ok := a.llm.(model.Streamer); ok {
			return s.Stream(callCtx, req, onChunk)
		}
	}
	resp, err := a.llm.Complete(callCtx, req)
	if err != nil {
		return nil, err
	}
	if onChunk != nil && len(resp.ToolCalls) == 0 && resp.Content != "" {
		if err := onChunk(resp.Content); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// executeToolCalls runs all calls from one model response concurrently and
// returns their result messages in call order, not completion order. Every
// failure is recovered into an error-flagged result message.
func (a *Agent) executeToolCalls(ctx context.Context, calls []core.ToolCall) []core.Message {
	return iter.Map(calls, func(call *core.ToolCall) core.Message {
		return a.executeToolCall(ctx, *call)
	})
}

func (a *Agent) executeToolCall(ctx context.Context, call core.ToolCall) core.Message {
	t := a.tools[call.Name]
	start := time.Now()

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			badArgs := tool.NewToolError(call.Name, fmt.Sprintf("malformed arguments: %v", err), tool.CodeValidation)
			return core.ToolResultMessage(call, badArgs.Error(), true)
		}
	}

	result, err := a.invokeTool(ctx, t, args)
	a.logger.Info("agent.tool.executed",
		"agent", a.name,
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)
	if err != nil {
		return core.ToolResultMessage(call, err.Error(), true)
	}
	return core.ToolResultMessage(call, stringifyResult(result), false)
}

// invokeTool applies the per-call timeout and converts panics and deadline
// hits into ToolErrors so the loop can keep going.
func (a *Agent) invokeTool(ctx context.Context, t tool.Tool, args map[string]any) (any, error) {
	callCtx := ctx
	cancel := func() {}
	if a.toolTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, a.toolTimeout)
	}
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: tool.NewToolError(t.Name(), fmt.Sprintf("panic: %v", r), tool.CodePanic)}
			}
		}()
		result, err := t.Call(callCtx, args)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case <-callCtx.Done():
		return nil, tool.NewToolError(t.Name(), callCtx.Err().Error(), tool.CodeTimeout)
	case o := <-ch:
		return o.result, o.err
	}
}

// commit writes the completed turn to every attached memory. Write failures
// are always surfaced.
func (a *Agent) commit(ctx context.Context, userMsg, assistantMsg core.Message) error {
	for _, store := range a.memories {
		if err := store.Add(ctx, userMsg); err != nil {
			return err
		}
		if err := store.Add(ctx, assistantMsg); err != nil {
			return err
		}
	}
	return nil
}

func stringifyResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
