package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/repair"
)

var (
	ErrUnparsable = errors.New("unparsable oracle response")
)

// DefaultTemperature keeps the oracle close to deterministic.
const DefaultTemperature = 0.1

// Oracle sends page prompts to a completer, accounts the usage in the run
// ledger and repairs the response into a record.
type Oracle struct {
	Completer provider.Completer

	// Model is the name usage is priced under when the completion does not
	// report the model that served it.
	Model string

	Schema *provider.Schema
}

type Request struct {
	Agent     string
	Operation string

	Prompt string
	Page   document.Page
}

// Ask runs a single oracle call. Usage is recorded even when the response
// cannot be parsed.
func (o *Oracle) Ask(ctx context.Context, run *ledger.Run, req Request) (repair.Record, error) {
	if o.Completer == nil {
		return nil, errors.New("no completer configured")
	}

	messages := []provider.Message{
		provider.UserMessage(req.Prompt, req.Page.File()),
	}

	options := &provider.CompleteOptions{
		Temperature: provider.Ptr[float32](DefaultTemperature),

		Format: provider.CompletionFormatJSON,
		Schema: o.Schema,
	}

	completion, err := o.Completer.Complete(ctx, messages, options)

	if err != nil {
		return nil, fmt.Errorf("%s: page %d: %w", req.Operation, req.Page.Number, err)
	}

	if completion.Usage != nil && run != nil {
		model := completion.Model

		if model == "" {
			model = o.Model
		}

		run.Record(req.Agent, req.Operation, model, completion.Usage.InputTokens, completion.Usage.OutputTokens)
	}

	text := completion.Text()

	if text == "" {
		return nil, fmt.Errorf("%s: page %d: %w", req.Operation, req.Page.Number, provider.ErrEmptyCompletion)
	}

	record := repair.Parse(text)

	if msg, failed := repair.Error(record); failed {
		return record, fmt.Errorf("%s: page %d: %w: %s", req.Operation, req.Page.Number, ErrUnparsable, msg)
	}

	return record, nil
}
