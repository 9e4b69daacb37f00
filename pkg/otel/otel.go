package otel

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const scope = "github.com/paperscan/paperscan"

// Enabled reports whether an OTLP endpoint is configured.
func Enabled() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" || os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") != ""
}

// Protocol returns the OTLP transport selected by OTEL_EXPORTER_OTLP_PROTOCOL:
// "grpc" or "http/protobuf" (the default).
func Protocol() string {
	if strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"), "grpc") {
		return "grpc"
	}

	return "http/protobuf"
}

type exporters struct {
	trace  sdktrace.SpanExporter
	metric sdkmetric.Exporter
	log    sdklog.Exporter
}

func newExporters(ctx context.Context, protocol string) (*exporters, error) {
	var (
		e   exporters
		err error
	)

	if protocol == "grpc" {
		if e.trace, err = otlptracegrpc.New(ctx); err != nil {
			return nil, err
		}

		if e.metric, err = otlpmetricgrpc.New(ctx); err != nil {
			return nil, err
		}

		if e.log, err = otlploggrpc.New(ctx); err != nil {
			return nil, err
		}

		return &e, nil
	}

	if e.trace, err = otlptracehttp.New(ctx); err != nil {
		return nil, err
	}

	if e.metric, err = otlpmetrichttp.New(ctx); err != nil {
		return nil, err
	}

	if e.log, err = otlploghttp.New(ctx); err != nil {
		return nil, err
	}

	return &e, nil
}

// Setup installs OTLP trace, metric and log providers and returns a slog
// handler bridged to the log provider. The returned shutdown flushes all
// providers.
func Setup(ctx context.Context, service string) (slog.Handler, func(context.Context) error, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
	)

	e, err := newExporters(ctx, Protocol())

	if err != nil {
		return nil, nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(e.trace),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(e.metric)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(e.log)),
		sdklog.WithResource(res),
	)

	global.SetLoggerProvider(loggerProvider)

	handler := otelslog.NewHandler(scope, otelslog.WithLoggerProvider(loggerProvider))

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
			loggerProvider.Shutdown(ctx),
		)
	}

	return handler, shutdown, nil
}
