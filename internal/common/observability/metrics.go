// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"survey-analyst/internal/common/logger"
)

// Options configures the OpenTelemetry providers.
type Options struct {
	ServiceName    string
	JaegerEndpoint string
	// Registerer receives the OTel Prometheus collector; nil means the
	// default Prometheus registry.
	Registerer promclient.Registerer
	// SpanProcessor is added to the tracer provider when set (tests use a
	// span recorder).
	SpanProcessor sdktrace.SpanProcessor
}

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	runCounter     otelmetric.Int64Counter
	stageDuration  otelmetric.Float64Histogram
	logger         logger.Logger
}

// New wires an OTel meter exported through Prometheus and a tracer exported
// to Jaeger when an endpoint is configured. Exporter failures are logged and
// leave that signal disabled.
func New(opts Options, log logger.Logger) *Observability {
	log = logger.Component(log, "observability")
	o := &Observability{logger: log, tracer: noop.NewTracerProvider().Tracer(opts.ServiceName)}

	promOpts := []prometheus.Option{}
	if opts.Registerer != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
		meter := o.meterProvider.Meter(opts.ServiceName)

		o.runCounter, _ = meter.Int64Counter(
			"team.runs",
			otelmetric.WithDescription("Number of team runs processed"),
		)
		o.stageDuration, _ = meter.Float64Histogram(
			"team.stage.duration",
			otelmetric.WithDescription("Team member stage duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	tp, err := newTracerProvider(opts)
	if err != nil {
		log.Warn("Failed to create Jaeger exporter", map[string]interface{}{
			"error":    err,
			"endpoint": opts.JaegerEndpoint,
		})
		return o
	}
	if tp != nil {
		o.tracerProvider = tp
		otel.SetTracerProvider(tp)
		o.tracer = tp.Tracer(opts.ServiceName)
	}
	return o
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	return &Observability{
		tracer: noop.NewTracerProvider().Tracer("noop"),
		logger: logger.NewNoOpLogger(),
	}
}

// StartSpan starts a span named after a team stage.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordRun(ctx context.Context, status string) {
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordStage(ctx context.Context, member string, duration time.Duration, status string) {
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("member", member),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("Tracer provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("Meter provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
