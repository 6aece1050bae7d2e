// Package otel wires OpenTelemetry tracing for the gd commands.
package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/louisbranch/geometrydash/internal/platform/config"
)

// Env holds the tracing settings. An empty Endpoint or Enabled set to
// "false" leaves tracing off.
type Env struct {
	Endpoint    string  `env:"GD_OTEL_ENDPOINT"`
	Enabled     string  `env:"GD_OTEL_ENABLED"`
	SampleRatio float64 `env:"GD_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether spans should be exported.
func (e Env) Active() bool {
	return strings.TrimSpace(e.Endpoint) != "" && !strings.EqualFold(strings.TrimSpace(e.Enabled), "false")
}

func (e Env) sampler() sdktrace.Sampler {
	switch {
	case e.SampleRatio >= 1:
		return sdktrace.AlwaysSample()
	case e.SampleRatio <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(e.SampleRatio))
}

// Setup reads Env and installs a tracer provider for serviceName. Game
// client spans are dropped by the default global provider when tracing is
// off. The returned shutdown flushes pending spans.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var env Env
	if err := config.ParseEnv(&env); err != nil {
		return nil, fmt.Errorf("otel env: %w", err)
	}
	return SetupWith(ctx, serviceName, env)
}

// SetupWith installs a tracer provider from explicit settings.
func SetupWith(ctx context.Context, serviceName string, env Env) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !env.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(strings.TrimSpace(env.Endpoint)))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(env.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
