package pciids

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// telemetry holds the optional OpenTelemetry instruments of a Database.
// Instruments are created once at construction and reused for every load
// and query. A nil tracer or meter disables the respective signal.
type telemetry struct {
	tracer trace.Tracer

	// loadDuration records load duration in milliseconds.
	loadDuration metric.Float64Histogram

	// loadCount increments per load attempt, labeled by outcome.
	loadCount metric.Int64Counter

	// queryCount increments per query, labeled by operation.
	queryCount metric.Int64Counter
}

// newTelemetry creates the instruments for the given tracer and meter.
// Either may be nil.
func newTelemetry(tracer trace.Tracer, meter metric.Meter) (*telemetry, error) {
	t := &telemetry{tracer: tracer}
	if meter == nil {
		return t, nil
	}

	var err error

	t.loadDuration, err = meter.Float64Histogram(
		"pciids.load.duration",
		metric.WithDescription("Database load duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create load duration histogram: %w", err)
	}

	t.loadCount, err = meter.Int64Counter(
		"pciids.load.count",
		metric.WithDescription("Number of database load attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create load counter: %w", err)
	}

	t.queryCount, err = meter.Int64Counter(
		"pciids.query.count",
		metric.WithDescription("Number of database queries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create query counter: %w", err)
	}

	return t, nil
}

// startLoadSpan opens a span around one load, if a tracer is configured.
func (t *telemetry) startLoadSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	if t.tracer == nil {
		return ctx, nil
	}
	return t.tracer.Start(ctx, op)
}

// recordLoad finishes the span and records the load metrics.
func (t *telemetry) recordLoad(ctx context.Context, span trace.Span, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	if span != nil {
		span.SetAttributes(
			attribute.Float64("pciids.load.duration_ms", float64(elapsed.Milliseconds())),
			attribute.String("pciids.load.outcome", outcome),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "load complete")
		}
		span.End()
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if t.loadDuration != nil {
		t.loadDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	}
	if t.loadCount != nil {
		t.loadCount.Add(ctx, 1, attrs)
	}
}

// countQuery records one query for the given operation.
func (t *telemetry) countQuery(op string) {
	if t.queryCount == nil {
		return
	}
	t.queryCount.Add(context.Background(), 1, metric.WithAttributes(attribute.String("operation", op)))
}
