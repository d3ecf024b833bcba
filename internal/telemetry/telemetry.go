// Package telemetry wires OpenTelemetry tracing and metrics for the engine:
// a batched OTLP/HTTP span exporter around LLM calls, clustering runs, and
// execution steps, plus in-process counters for ingested/dropped/clustered/
// executed events. Setup follows the standard
// otel-go SDK initialization idiom (TracerProvider + resource +
// BatchSpanProcessor + otlptracehttp.Client) since no repo in the pack
// instantiates one either.
package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghostlabs/ghost-core/internal/config"
)

// Provider owns the process's tracer and meter providers and the metric
// reader backing the Counters exposed through it. Shutdown flushes any
// buffered spans and releases exporter resources.
type Provider struct {
	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	reader  *sdkmetric.ManualReader
	tracer  trace.Tracer
	meter   metric.Meter
	Metrics *Counters
}

const instrumentationName = "github.com/ghostlabs/ghost-core"

// Noop returns a Provider backed by OTel's no-op implementations (the
// library default global providers, never installed via Set*Provider) —
// used when telemetry is disabled (cfg.Enabled == false) so call sites
// never need a nil check.
func Noop() *Provider {
	p := &Provider{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
	p.Metrics = newCounters(p.meter)
	return p
}

// Setup builds a real exporting Provider from cfg and installs it as the
// process-wide default (otel.SetTracerProvider / otel.SetMeterProvider),
// so that otel.Tracer(...)/otel.Meter(...) calls anywhere in the process
// pick it up without explicit plumbing. Returns a Noop Provider, and
// leaves the process-wide default untouched, when cfg.Enabled is false.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (*Provider, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("telemetry: enabled but no endpoint configured")
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ghost-engine"
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	exp, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: new exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	p := &Provider{
		tp:     tp,
		mp:     mp,
		reader: reader,
		tracer: tp.Tracer(instrumentationName),
		meter:  mp.Meter(instrumentationName),
	}
	p.Metrics = newCounters(p.meter)
	return p, nil
}

func newTraceExporter(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(&tls.Config{}))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	opts = append(opts, otlptracehttp.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))

	client := otlptracehttp.NewClient(opts...)
	return otlptrace.New(ctx, client)
}

// Tracer returns the process tracer for starting spans.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes buffered spans and releases exporter resources. Safe to
// call on a Noop Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// StartSpan is a small helper so call sites don't need to import
// go.opentelemetry.io/otel/trace directly: start a span named name under
// this provider's tracer, tagged with attrs.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
