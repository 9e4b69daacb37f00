package limiter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/stretchr/testify/require"
)

type countingCompleter struct {
	calls atomic.Int32
}

func (c *countingCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	c.calls.Add(1)
	return &provider.Completion{}, nil
}

func TestUnlimited(t *testing.T) {
	inner := &countingCompleter{}
	c := NewCompleter(inner, 0, 0)

	for range 10 {
		_, err := c.Complete(context.Background(), nil, nil)
		require.NoError(t, err)
	}

	require.EqualValues(t, 10, inner.calls.Load())
}

func TestWaitHonoursContext(t *testing.T) {
	inner := &countingCompleter{}
	c := NewCompleter(inner, 1, 1)

	_, err := c.Complete(context.Background(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = c.Complete(ctx, nil, nil)
	require.Error(t, err)
	require.EqualValues(t, 1, inner.calls.Load())
}
