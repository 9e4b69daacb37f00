package otel

import (
	"context"

	"github.com/paperscan/paperscan/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Completer interface {
	otelSetup()

	provider.Completer
}

type observableCompleter struct {
	name    string
	library string

	completer provider.Completer

	tracer trace.Tracer
	tokens metric.Int64Counter
}

// NewCompleter records a span and token counters around every completion.
func NewCompleter(library, name string, p provider.Completer) Completer {
	tokens, _ := otel.Meter(scope).Int64Counter("paperscan.oracle.tokens",
		metric.WithDescription("tokens consumed by oracle calls"),
		metric.WithUnit("{token}"),
	)

	return &observableCompleter{
		name:    name,
		library: library,

		completer: p,

		tracer: otel.Tracer(scope),
		tokens: tokens,
	}
}

func (c *observableCompleter) otelSetup() {
}

func (c *observableCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	ctx, span := c.tracer.Start(ctx, "complete "+c.name, trace.WithAttributes(
		attribute.String("gen_ai.system", c.library),
		attribute.String("gen_ai.request.model", c.name),
	))

	defer span.End()

	completion, err := c.completer.Complete(ctx, messages, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	if completion != nil && completion.Usage != nil {
		span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", completion.Usage.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", completion.Usage.OutputTokens),
		)

		if c.tokens != nil {
			c.tokens.Add(ctx, int64(completion.Usage.InputTokens), metric.WithAttributes(
				attribute.String("model", c.name),
				attribute.String("direction", "input"),
			))

			c.tokens.Add(ctx, int64(completion.Usage.OutputTokens), metric.WithAttributes(
				attribute.String("model", c.name),
				attribute.String("direction", "output"),
			))
		}
	}

	return completion, nil
}
