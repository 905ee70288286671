package agent

import "fmt"

// ResolutionError reports a model-requested tool name with no registered
// tool. Fatal: it aborts the run.
type ResolutionError struct {
	Agent string
	Tool  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("agent %s: unknown tool %q requested by model", e.Agent, e.Tool)
}

// MaxIterationsError reports that the loop guard tripped before the model
// produced terminal content.
type MaxIterationsError struct {
	Agent string
	Limit int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("agent %s: exceeded maximum of %d loop iterations", e.Agent, e.Limit)
}

// UnsupportedToolsError reports an attempt to combine tools or sub-agents
// with a model that does not support tool calling. Raised at construction.
type UnsupportedToolsError struct {
	Agent    string
	Provider string
}

func (e *UnsupportedToolsError) Error() string {
	return fmt.Sprintf("agent %s: model provider %s does not support tools", e.Agent, e.Provider)
}
