package runnable

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper() Runnable {
	return Func(func(_ context.Context, input any, _ map[string]any) (any, error) {
		return strings.ToUpper(input.(string)), nil
	})
}

func suffix(s string) Runnable {
	return Func(func(_ context.Context, input any, _ map[string]any) (any, error) {
		return input.(string) + s, nil
	})
}

func TestPipeline_Run(t *testing.T) {
	p := Chain(upper(), suffix("!"))

	out, err := p.Run(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "HELLO!", out)
}

func TestPipeline_To_Associativity(t *testing.T) {
	a, b, c := upper(), suffix("-b"), suffix("-c")

	left := a.To(b).To(c)
	right := a.To(b.To(c))

	ctx := context.Background()
	outLeft, err := left.Run(ctx, "x", nil)
	require.NoError(t, err)
	outRight, err := right.Run(ctx, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, outLeft, outRight)

	// Flattening produces the identical stage sequence, not just the same
	// output.
	assert.Len(t, left.(Pipeline).Stages(), 3)
	assert.Len(t, right.(Pipeline).Stages(), 3)
}

func TestPipeline_Run_ErrorStopsChain(t *testing.T) {
	boom := errors.New("boom")
	var ran bool
	p := Chain(
		Func(func(_ context.Context, _ any, _ map[string]any) (any, error) { return nil, boom }),
		Func(func(_ context.Context, input any, _ map[string]any) (any, error) {
			ran = true
			return input, nil
		}),
	)

	_, err := p.Run(context.Background(), "x", nil)
	require.ErrorIs(t, err, boom)
	assert.False(t, ran, "stage after failure must not run")
}

func TestPipeline_Stream_MatchesBufferedRun(t *testing.T) {
	p := Chain(upper(), suffix("!"))

	var chunks []any
	err := p.Stream(context.Background(), "hi", nil, func(chunk any) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	var streamed strings.Builder
	for _, c := range chunks {
		streamed.WriteString(c.(string))
	}
	out, err := p.Run(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, out, streamed.String())
}

func TestFunc_DefaultStream(t *testing.T) {
	var chunks []any
	err := upper().Stream(context.Background(), "abc", nil, func(chunk any) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"ABC"}, chunks)
}
