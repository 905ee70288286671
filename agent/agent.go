// Package agent implements the execution engine: the orchestration loop that
// turns a single user request into a finished answer by interleaving model
// calls, tool resolution, sub-agent delegation and memory reads/writes.
//
// An Agent owns a tool registry, references (not copies) of its sub-agents —
// each wrapped as a synthetic delegation tool — and any number of attached
// memory stores. Run drives the loop: build messages, call the model, execute
// requested tools, repeat until the model returns plain content or the
// iteration ceiling trips.
package agent

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/tool"
)

// DefaultMaxIterations is the loop ceiling applied when none is configured.
const DefaultMaxIterations = 10

// DelegatePrefix prefixes every synthetic delegation tool name.
const DelegatePrefix = "delegate_to_"

// OutputFormat selects what Result.Output returns.
type OutputFormat int

const (
	// OutputContent returns the final content string.
	OutputContent OutputFormat = iota
	// OutputMessages returns the full message list of the run.
	OutputMessages
	// OutputRaw returns the raw provider response.
	OutputRaw
)

// Options configure an Agent.
type Options struct {
	// Description is a short characterization used in the system prompt and
	// in delegation tool descriptions.
	Description string
	// Instructions steer the model. Combined with Description into the
	// system message.
	Instructions string
	// Tools registered for function calling. Names must be unique.
	Tools []tool.Tool
	// SubAgents are wrapped as delegation tools. The same Agent instance may
	// be reused as a sub-agent of several parents.
	SubAgents []*Agent
	// Memories receive the committed turn and contribute context to every
	// outbound message build.
	Memories []memory.Store
	// Params are passed to the model verbatim.
	Params map[string]any
	// MaxIterations guards against runaway tool-call loops.
	MaxIterations int
	// ModelTimeout bounds each model call. Zero disables the bound.
	ModelTimeout time.Duration
	// ToolTimeout bounds each tool callback. Zero disables the bound.
	ToolTimeout time.Duration
	// StrictMemory makes memory read failures fatal instead of degrading to
	// an empty context.
	StrictMemory bool
	// OutputFormat selects the shape of Result.Output.
	OutputFormat OutputFormat
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Agent orchestrates a model, tools, sub-agents and memory.
// All configuration is fixed at construction; an Agent is safe for concurrent
// runs as long as each attached memory store keeps its single-writer
// discipline.
type Agent struct {
	name          string
	description   string
	instructions  string
	llm           model.Model
	tools         map[string]tool.Tool
	toolNames     []string // registration order, for deterministic tool listing
	subAgents     []*Agent
	memories      []memory.Store
	params        map[string]any
	maxIterations int
	modelTimeout  time.Duration
	toolTimeout   time.Duration
	strictMemory  bool
	outputFormat  OutputFormat
	logger        logging.Logger
}

// New creates an Agent. Construction fails on an empty name, a nil model,
// duplicate tool names, or a model without tool support when tools or
// sub-agents are present.
func New(name string, llm model.Model, optFns ...func(o *Options)) (*Agent, error) {
	if name == "" {
		return nil, fmt.Errorf("agent name must not be empty")
	}
	if llm == nil {
		return nil, fmt.Errorf("agent %s: model must not be nil", name)
	}

	opts := Options{
		MaxIterations: DefaultMaxIterations,
		ToolTimeout:   15 * time.Second,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	a := &Agent{
		name:          name,
		description:   opts.Description,
		instructions:  opts.Instructions,
		llm:           llm,
		tools:         make(map[string]tool.Tool),
		subAgents:     opts.SubAgents,
		memories:      opts.Memories,
		params:        opts.Params,
		maxIterations: opts.MaxIterations,
		modelTimeout:  opts.ModelTimeout,
		toolTimeout:   opts.ToolTimeout,
		strictMemory:  opts.StrictMemory,
		outputFormat:  opts.OutputFormat,
		logger:        opts.Logger,
	}

	for _, t := range opts.Tools {
		if err := a.register(t); err != nil {
			return nil, err
		}
	}
	for _, sub := range opts.SubAgents {
		if sub == nil {
			return nil, fmt.Errorf("agent %s: nil sub-agent", name)
		}
		if err := a.register(newDelegateTool(sub)); err != nil {
			return nil, err
		}
	}

	if len(a.tools) > 0 && !llm.Info().SupportsTools {
		return nil, &UnsupportedToolsError{Agent: name, Provider: llm.Info().Provider}
	}

	return a, nil
}

func (a *Agent) register(t tool.Tool) error {
	if t == nil {
		return fmt.Errorf("agent %s: nil tool", a.name)
	}
	if _, exists := a.tools[t.Name()]; exists {
		return fmt.Errorf("agent %s: duplicate tool name %q", a.name, t.Name())
	}
	a.tools[t.Name()] = t
	a.toolNames = append(a.toolNames, t.Name())
	return nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// Instructions returns the agent's instructions.
func (a *Agent) Instructions() string { return a.instructions }

// SubAgents returns the referenced sub-agents.
func (a *Agent) SubAgents() []*Agent {
	out := make([]*Agent, len(a.subAgents))
	copy(out, a.subAgents)
	return out
}

// ToolNames returns registered tool names in registration order, including
// synthetic delegation tools.
func (a *Agent) ToolNames() []string {
	out := make([]string, len(a.toolNames))
	copy(out, a.toolNames)
	return out
}

// systemPrompt combines description and instructions into the system message
// text. Empty when neither is configured.
func (a *Agent) systemPrompt() string {
	switch {
	case a.description != "" && a.instructions != "":
		return a.description + "\n\n" + a.instructions
	case a.description != "":
		return a.description
	default:
		return a.instructions
	}
}

// toolDefinitions flattens the registry into the wire-neutral schema list, in
// registration order.
func (a *Agent) toolDefinitions() []model.ToolDefinition {
	if len(a.toolNames) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(a.toolNames))
	for _, name := range a.toolNames {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// DelegateToolName returns the deterministic delegation tool name for a
// sub-agent name.
func DelegateToolName(agentName string) string {
	return DelegatePrefix + util.Slug(agentName)
}
