package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/debemdeboas/the-press/internal/api"

// WithTracer traces every API call with tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.obs.tracer = tracer }
}

// WithMeter records call counts, durations and errors with meter.
func WithMeter(meter metric.Meter) Option {
	return func(c *Client) { c.obs.metrics = newMetrics(meter) }
}

// WithDefaultTelemetry uses the global tracer and meter providers.
func WithDefaultTelemetry() Option {
	return func(c *Client) {
		c.obs.tracer = otel.Tracer(instrumentationName)
		c.obs.metrics = newMetrics(otel.Meter(instrumentationName))
	}
}

func newMetrics(meter metric.Meter) *metrics {
	calls, _ := meter.Int64Counter("press.api.calls",
		metric.WithDescription("Total number of content API calls"),
		metric.WithUnit("{call}"),
	)
	duration, _ := meter.Float64Histogram("press.api.duration",
		metric.WithDescription("Content API call duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000),
	)
	errs, _ := meter.Int64Counter("press.api.errors",
		metric.WithDescription("Total number of failed content API calls"),
		metric.WithUnit("{error}"),
	)
	return &metrics{calls: calls, duration: duration, errors: errs}
}

// span tolerates a disabled tracer.
type span struct {
	s trace.Span
}

func (w span) End() {
	if w.s != nil {
		w.s.End()
	}
}

func (w span) RecordError(err error) {
	if w.s != nil {
		w.s.RecordError(err)
	}
}

func (w span) SetStatus(code codes.Code, description string) {
	if w.s != nil {
		w.s.SetStatus(code, description)
	}
}

func (o observability) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, span) {
	if o.tracer == nil {
		return ctx, span{}
	}
	ctx, s := o.tracer.Start(ctx, name, opts...)
	return ctx, span{s}
}

func (o observability) record(ctx context.Context, op string, d time.Duration, err error) {
	if o.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("press.api.operation", op))
	o.metrics.calls.Add(ctx, 1, attrs)
	o.metrics.duration.Record(ctx, float64(d.Milliseconds()), attrs)
	if err != nil {
		o.metrics.errors.Add(ctx, 1, attrs)
	}
}
