package runnable

import "context"

// Pipeline executes its stages in order, feeding each stage's output into the
// next. Pipelines are immutable: To returns a new Pipeline sharing no mutable
// state with its parent. Nested pipelines are flattened at construction so
// a.To(b).To(c) and a.To(b.To(c)) produce the identical stage sequence.
type Pipeline struct {
	stages []Runnable
}

// Chain builds a Pipeline from the given stages, flattening any nested
// Pipelines.
func Chain(stages ...Runnable) Pipeline {
	flat := make([]Runnable, 0, len(stages))
	for _, s := range stages {
		if p, ok := s.(Pipeline); ok {
			flat = append(flat, p.stages...)
			continue
		}
		flat = append(flat, s)
	}
	return Pipeline{stages: flat}
}

// Stages returns a copy of the stage sequence.
func (p Pipeline) Stages() []Runnable {
	out := make([]Runnable, len(p.stages))
	copy(out, p.stages)
	return out
}

// Run executes every stage in order. The first stage receives input; each
// subsequent stage receives its predecessor's output. Params are passed to
// every stage unchanged.
func (p Pipeline) Run(ctx context.Context, input any, params map[string]any) (any, error) {
	current := input
	for _, stage := range p.stages {
		out, err := stage.Run(ctx, current, params)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

// Stream runs all stages but the last buffered, then streams the last stage,
// so chunk order matches what a buffered Run would produce.
func (p Pipeline) Stream(ctx context.Context, input any, params map[string]any, onChunk func(chunk any) error) error {
	if len(p.stages) == 0 {
		return onChunk(input)
	}
	current := input
	for _, stage := range p.stages[:len(p.stages)-1] {
		out, err := stage.Run(ctx, current, params)
		if err != nil {
			return err
		}
		current = out
	}
	return p.stages[len(p.stages)-1].Stream(ctx, current, params, onChunk)
}

// To returns a new Pipeline with next appended. The receiver is unmodified.
func (p Pipeline) To(next Runnable) Runnable {
	stages := make([]Runnable, len(p.stages), len(p.stages)+1)
	copy(stages, p.stages)
	return Chain(append(stages, next)...)
}
