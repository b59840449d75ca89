// Package otel implements yewdux.Observability with OpenTelemetry traces and
// metrics.
package otel

import (
	"context"
	"time"

	"github.com/jilio/yewdux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jilio/yewdux"
)

// Observability implements yewdux.Observability using OpenTelemetry
type Observability struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	reduceCounter     metric.Int64Counter
	reduceDuration    metric.Float64Histogram
	notifyCounter     metric.Int64Counter
	notifySubscribers metric.Int64Histogram
}

// Option configures the Observability
type Option func(*Observability)

// WithTracerProvider sets a custom tracer provider
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *Observability) {
		o.tracer = provider.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets a custom meter provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Observability) {
		o.meter = provider.Meter(instrumentationName)
	}
}

// New creates a new OpenTelemetry observability implementation
func New(opts ...Option) (*Observability, error) {
	obs := &Observability{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(obs)
	}

	var err error

	obs.reduceCounter, err = obs.meter.Int64Counter(
		"yewdux.reduce.count",
		metric.WithDescription("Number of reductions"),
		metric.WithUnit("{reduction}"),
	)
	if err != nil {
		return nil, err
	}

	obs.reduceDuration, err = obs.meter.Float64Histogram(
		"yewdux.reduce.duration",
		metric.WithDescription("Reduction duration, excluding notification"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	obs.notifyCounter, err = obs.meter.Int64Counter(
		"yewdux.notify.count",
		metric.WithDescription("Number of broadcasts to subscribers"),
		metric.WithUnit("{broadcast}"),
	)
	if err != nil {
		return nil, err
	}

	obs.notifySubscribers, err = obs.meter.Int64Histogram(
		"yewdux.notify.subscribers",
		metric.WithDescription("Subscribers reached per broadcast"),
		metric.WithUnit("{subscriber}"),
	)
	if err != nil {
		return nil, err
	}

	return obs, nil
}

type storeTypeKey struct{}

// OnReduceStart is called before a reduction runs
func (o *Observability) OnReduceStart(ctx context.Context, storeType string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "yewdux.reduce: "+storeType,
		trace.WithAttributes(
			attribute.String("store.type", storeType),
		),
	)

	return context.WithValue(ctx, storeTypeKey{}, storeType)
}

// OnReduceComplete is called once the new state is committed
func (o *Observability) OnReduceComplete(ctx context.Context, duration time.Duration, changed bool) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Bool("changed", changed))

	attrs := metric.WithAttributes(
		attribute.String("store.type", storeTypeFrom(ctx)),
		attribute.Bool("changed", changed),
	)
	o.reduceCounter.Add(ctx, 1, attrs)
	o.reduceDuration.Record(ctx, float64(duration)/float64(time.Millisecond), attrs)

	span.End()
}

// OnNotify is called after a broadcast
func (o *Observability) OnNotify(ctx context.Context, storeType string, subscribers int) {
	_, span := o.tracer.Start(ctx, "yewdux.notify: "+storeType,
		trace.WithAttributes(
			attribute.String("store.type", storeType),
			attribute.Int("subscribers", subscribers),
		),
	)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("store.type", storeType))
	o.notifyCounter.Add(ctx, 1, attrs)
	o.notifySubscribers.Record(ctx, int64(subscribers), attrs)
}

func storeTypeFrom(ctx context.Context) string {
	storeType, _ := ctx.Value(storeTypeKey{}).(string)
	return storeType
}

// Ensure Observability implements yewdux.Observability
var _ yewdux.Observability = (*Observability)(nil)
