package limiter

import (
	"context"

	"github.com/paperscan/paperscan/pkg/provider"

	"golang.org/x/time/rate"
)

var _ provider.Completer = (*Completer)(nil)

// Completer throttles calls to the wrapped completer. The limiter is shared by
// every caller, including parallel document runs.
type Completer struct {
	limiter   *rate.Limiter
	completer provider.Completer
}

// NewCompleter allows perMinute requests per minute with a burst of burst.
// A non-positive perMinute disables throttling.
func NewCompleter(completer provider.Completer, perMinute, burst int) *Completer {
	limit := rate.Inf

	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}

	if burst < 1 {
		burst = 1
	}

	return &Completer{
		limiter:   rate.NewLimiter(limit, burst),
		completer: completer,
	}
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return c.completer.Complete(ctx, messages, options)
}
