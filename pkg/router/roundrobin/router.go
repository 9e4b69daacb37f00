package roundrobin

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/router"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	completers []provider.Completer
}

func NewCompleter(routes ...router.Route) (*Completer, error) {
	completers := []provider.Completer{}

	for _, r := range routes {
		if r.Completer == nil {
			continue
		}

		completers = append(completers, r.Completer)
	}

	if len(completers) == 0 {
		return nil, errors.New("roundrobin: no routes")
	}

	c := &Completer{
		completers: completers,
	}

	return c, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	index := rand.IntN(len(c.completers))
	provider := c.completers[index]

	return provider.Complete(ctx, messages, options)
}
