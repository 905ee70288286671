// Package runnable defines the minimal composable execution unit every
// pipeline stage implements: Run for buffered execution, Stream for
// incremental delivery and To for chaining. Composition is persistent — To
// returns a new value and never mutates its receiver — so a base pipeline can
// be reused safely across branches and goroutines.
package runnable

import "context"

// Runnable is a composable unit of work.
//
// Run executes the unit and returns its output or a typed error; it never
// silently drops data. Stream delivers the same computation incrementally,
// preserving the order chunks would appear in a buffered Run. To returns a
// new composite; the receiver and next stay unmodified.
type Runnable interface {
	Run(ctx context.Context, input any, params map[string]any) (any, error)
	Stream(ctx context.Context, input any, params map[string]any, onChunk func(chunk any) error) error
	To(next Runnable) Runnable
}

// Func adapts a plain function into a Runnable. Stream degrades to a single
// chunk carrying the buffered output.
type Func func(ctx context.Context, input any, params map[string]any) (any, error)

// Run implements Runnable.
func (f Func) Run(ctx context.Context, input any, params map[string]any) (any, error) {
	return f(ctx, input, params)
}

// Stream implements Runnable by emitting the buffered output as one chunk.
func (f Func) Stream(ctx context.Context, input any, params map[string]any, onChunk func(chunk any) error) error {
	out, err := f(ctx, input, params)
	if err != nil {
		return err
	}
	return onChunk(out)
}

// To implements Runnable.
func (f Func) To(next Runnable) Runnable {
	return Chain(f, next)
}
