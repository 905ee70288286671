// Package ollama adapts a local Ollama server (chat with tool calling, plus
// embeddings) to the generic model.Model / model.Embedder interfaces.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/ollama/ollama/api"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configure the Ollama model adapter.
type Options struct {
	Model          string
	EmbeddingModel string
	BaseURL        string
	HTTPClient     *http.Client
	// ModelOptions are passed through to the server verbatim (temperature,
	// num_ctx, ...).
	ModelOptions map[string]any
}

// Model wraps the Ollama API client behind model.Model, model.Streamer and
// model.Embedder.
type Model struct {
	client *api.Client
	opts   Options
}

// NewModel creates a new Ollama model. With an empty BaseURL the client is
// configured from the environment (OLLAMA_HOST).
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:          "llama3.1",
		EmbeddingModel: "nomic-embed-text",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var client *api.Client
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = api.NewClient(u, httpClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client from environment: %w", err)
		}
	}

	return &Model{client: client, opts: opts}, nil
}

// Complete implements model.Model.
func (m *Model) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    m.opts.Model,
		Messages: buildMessages(req.Messages),
		Stream:   &stream,
		Options:  m.opts.ModelOptions,
	}

	if len(req.Tools) > 0 {
		tools, err := buildTools(req.Tools)
		if err != nil {
			return nil, err
		}
		chatReq.Tools = tools
	}

	var out *model.Response
	err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		out = convertResponse(resp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("ollama chat error: no response received")
	}
	return out, nil
}

// Stream implements model.Streamer. Text deltas reach onChunk as they arrive;
// the returned response is the buffered whole.
func (m *Model) Stream(ctx context.Context, req model.Request, onChunk func(chunk string) error) (*model.Response, error) {
	stream := true
	chatReq := &api.ChatRequest{
		Model:    m.opts.Model,
		Messages: buildMessages(req.Messages),
		Stream:   &stream,
		Options:  m.opts.ModelOptions,
	}
	if len(req.Tools) > 0 {
		tools, err := buildTools(req.Tools)
		if err != nil {
			return nil, err
		}
		chatReq.Tools = tools
	}

	out := &model.Response{}
	err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			out.Content += resp.Message.Content
			if err := onChunk(resp.Message.Content); err != nil {
				return err
			}
		}
		for _, tc := range resp.Message.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, convertToolCall(tc, len(out.ToolCalls)))
		}
		if resp.Done {
			out.FinishReason = finishReason(resp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama streaming error: %w", err)
	}
	return out, nil
}

// Embed implements model.Embedder using the embeddings endpoint.
func (m *Model) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := m.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  m.opts.EmbeddingModel,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings error: %w", err)
	}
	return resp.Embedding, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama", SupportsTools: true}
}

func convertResponse(resp api.ChatResponse) *model.Response {
	out := &model.Response{
		Content:      resp.Message.Content,
		FinishReason: finishReason(resp),
		Raw:          resp,
	}
	for _, tc := range resp.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, convertToolCall(tc, len(out.ToolCalls)))
	}
	return out
}

// convertToolCall maps an Ollama tool call to the neutral shape. Ollama does
// not issue call ids, so a positional id is synthesized for correlation.
func convertToolCall(tc api.ToolCall, index int) core.ToolCall {
	args := "{}"
	if data, err := json.Marshal(tc.Function.Arguments); err == nil {
		args = string(data)
	}
	return core.ToolCall{
		ID:        fmt.Sprintf("call_%d", index),
		Name:      tc.Function.Name,
		Arguments: args,
	}
}

func finishReason(resp api.ChatResponse) string {
	if len(resp.Message.ToolCalls) > 0 {
		return "tool_calls"
	}
	if resp.DoneReason != "" {
		return resp.DoneReason
	}
	return "stop"
}

// buildMessages replays the neutral history into the API shape. Assistant
// tool calls and tool-result correlation must survive the conversion or the
// model loses track of which call produced which result on later iterations.
func buildMessages(msgs []core.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		m := api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == core.RoleAssistant && len(msg.ToolCalls) > 0 {
			m.ToolCalls = buildToolCalls(msg.ToolCalls)
		}
		if msg.Role == core.RoleTool {
			m.ToolName = msg.ToolName
			m.ToolCallID = msg.ToolCallID
		}
		out = append(out, m)
	}
	return out
}

func buildToolCalls(calls []core.ToolCall) []api.ToolCall {
	out := make([]api.ToolCall, 0, len(calls))
	for _, call := range calls {
		var args api.ToolCallFunctionArguments
		if call.Arguments != "" {
			// Malformed arguments degrade to an empty map rather than
			// dropping the call from history.
			_ = json.Unmarshal([]byte(call.Arguments), &args)
		}
		out = append(out, api.ToolCall{
			ID: call.ID,
			Function: api.ToolCallFunction{
				Name:      call.Name,
				Arguments: args,
			},
		})
	}
	return out
}

// buildTools converts neutral tool definitions into the API's typed tool
// shape via a JSON round-trip, which tolerates schema fields the typed struct
// does not model.
func buildTools(tools []model.ToolDefinition) (api.Tools, error) {
	wire := make([]map[string]any, len(tools))
	for i, t := range tools {
		wire[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		}
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal tools: %w", err)
	}
	var out api.Tools
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal tools: %w", err)
	}
	return out, nil
}
