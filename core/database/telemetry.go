package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// opTrace carries the span and start time of one store operation.
type opTrace struct {
	d      *Database
	span   trace.Span
	start  time.Time
	method string
}

// startOp starts the telemetry recording for a store operation.
// It returns a new context carrying the span.
func (d *Database) startOp(ctx context.Context, method string) (context.Context, *opTrace) {
	attrs := metric.WithAttributes(
		attribute.String("store.service", d.serviceName),
		attribute.String("store.method", method),
	)
	d.metrics.ActiveOpsUpDownCounter.Add(ctx, 1, attrs)
	d.metrics.OpsStartedCounter.Add(ctx, 1, attrs)

	ctx, span := d.tracer.Start(ctx, method, trace.WithAttributes(
		attribute.String("store.service", d.serviceName),
		attribute.String("store.method", method),
		attribute.String("store.database", d.name),
	))
	return ctx, &opTrace{d: d, span: span, start: time.Now(), method: method}
}

// end completes the telemetry recording for a store operation.
func (op *opTrace) end(ctx context.Context, err error) {
	latency := time.Since(op.start).Milliseconds()

	code := otelcodes.Ok
	if err != nil {
		code = otelcodes.Error
		op.span.RecordError(err)
		op.span.SetStatus(otelcodes.Error, err.Error())
	} else {
		op.span.SetStatus(otelcodes.Ok, "Success")
	}
	op.span.End()

	m := op.d.metrics
	m.ActiveOpsUpDownCounter.Add(ctx, -1, metric.WithAttributes(
		attribute.String("store.service", op.d.serviceName),
		attribute.String("store.method", op.method),
	))

	metricAttributes := attribute.NewSet(
		attribute.String("store.service", op.d.serviceName),
		attribute.String("store.method", op.method),
		attribute.String("store.code", code.String()),
	)
	m.OpLatencyHistogram.Record(ctx, latency, metric.WithAttributeSet(metricAttributes))
	m.OpsHandledCounter.Add(ctx, 1, metric.WithAttributeSet(metricAttributes))
}
