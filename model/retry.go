package model

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// CallError reports a completion that failed after the retry budget was
// exhausted. It is fatal: the engine surfaces it to the caller unchanged.
type CallError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call failed after %d attempt(s) against %s: %v", e.Attempts, e.Provider, e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *CallError) Unwrap() error { return e.Err }

// RetryOptions configure the WithRetry decorator.
type RetryOptions struct {
	// MaxRetries is the number of re-attempts after the first failure.
	MaxRetries uint64
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration
}

// WithRetry wraps a Model so transient completion failures are retried with
// exponential backoff. Once the budget is spent the last error surfaces as a
// *CallError. Context cancellation stops retrying immediately.
func WithRetry(inner Model, optFns ...func(o *RetryOptions)) Model {
	opts := RetryOptions{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &retryModel{inner: inner, opts: opts}
}

type retryModel struct {
	inner Model
	opts  RetryOptions
}

// Complete implements Model.
func (m *retryModel) Complete(ctx context.Context, req Request) (*Response, error) {
	var resp *Response

	backoff := retry.WithMaxRetries(m.opts.MaxRetries, retry.NewExponential(m.opts.BaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := m.inner.Complete(ctx, req)
		if err != nil {
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, &CallError{
			Provider: m.inner.Info().Provider,
			Attempts: int(m.opts.MaxRetries) + 1,
			Err:      err,
		}
	}
	return resp, nil
}

// Stream implements Streamer when the wrapped model does. Streams are not
// retried mid-flight; only the initial attempt failure is eligible.
func (m *retryModel) Stream(ctx context.Context, req Request, onChunk func(chunk string) error) (*Response, error) {
	if s, ok := m.inner.(Streamer); ok {
		resp, err := s.Stream(ctx, req, onChunk)
		if err != nil {
			return nil, &CallError{Provider: m.inner.Info().Provider, Attempts: 1, Err: err}
		}
		return resp, nil
	}
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := onChunk(resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// Info implements Model.
func (m *retryModel) Info() Info { return m.inner.Info() }
