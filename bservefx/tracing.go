package bservefx

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

// NewTracerProvider creates the TracerProvider the servers record their dispatch spans with.
// Supported exporters via BSERVE_OTEL_EXPORTER: "none" (default) and "stdout".
// Shutdown is handled automatically via fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter

	switch env.otelExporter() {
	case "none", "":
		return noop.NewTracerProvider(), nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, errors.Wrap(err, "stdout exporter")
		}

		exporter = exp
	default:
		return nil, errors.Newf("unsupported BSERVE_OTEL_EXPORTER: %q (supported: none, stdout)", env.otelExporter())
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(env.serviceName()),
		)),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}
