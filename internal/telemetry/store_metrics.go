package internaltelemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// StoreMetrics holds all the metric instruments for a record store.
// A nil *StoreMetrics records nothing.
type StoreMetrics struct {
	OpsStartedCounter      metric.Int64Counter
	OpsHandledCounter      metric.Int64Counter
	OpLatencyHistogram     metric.Int64Histogram
	ActiveOpsUpDownCounter metric.Int64UpDownCounter

	RecordsInserted  metric.Int64Counter
	RecordsDeleted   metric.Int64Counter
	DuplicateInserts metric.Int64Counter
	RecordsDropped   metric.Int64Counter
	PagesAllocated   metric.Int64Counter
	FileRewrites     metric.Int64Counter
	TypesCreated     metric.Int64Counter
	TypesDeleted     metric.Int64Counter
}

// NewStoreMetrics creates and registers all the metrics for a record store.
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	m := &StoreMetrics{}
	var err error

	if m.OpsStartedCounter, err = meter.Int64Counter(
		"pagestore.ops.started_total",
		metric.WithDescription("Total number of store operations started."),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}
	if m.OpsHandledCounter, err = meter.Int64Counter(
		"pagestore.ops.handled_total",
		metric.WithDescription("Total number of store operations completed."),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}
	if m.OpLatencyHistogram, err = meter.Int64Histogram(
		"pagestore.ops.duration",
		metric.WithDescription("The latency of store operations."),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.ActiveOpsUpDownCounter, err = meter.Int64UpDownCounter(
		"pagestore.ops.active",
		metric.WithDescription("Number of store operations in flight."),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.RecordsInserted, "pagestore.records.inserted", "Records written to a page."},
		{&m.RecordsDeleted, "pagestore.records.deleted", "Records removed from a page."},
		{&m.DuplicateInserts, "pagestore.records.duplicate", "Inserts skipped because the key already existed."},
		{&m.RecordsDropped, "pagestore.records.dropped", "Corrupt records skipped while loading a data file."},
		{&m.PagesAllocated, "pagestore.pages.allocated", "Pages allocated by record types."},
		{&m.FileRewrites, "pagestore.file.rewrites", "Full rewrites of catalog or data files."},
		{&m.TypesCreated, "pagestore.types.created", "Record types created."},
		{&m.TypesDeleted, "pagestore.types.deleted", "Record types deleted."},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("1")); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NoopStoreMetrics returns instruments bound to a no-op meter.
func NoopStoreMetrics() *StoreMetrics {
	m, _ := NewStoreMetrics(noop.NewMeterProvider().Meter(""))
	return m
}

// Inc adds one to c tagged with the record type name. Safe on a nil receiver.
func (m *StoreMetrics) Inc(ctx context.Context, c func(*StoreMetrics) metric.Int64Counter, typeName string) {
	if m == nil {
		return
	}
	c(m).Add(ctx, 1, metric.WithAttributes(attribute.String("pagestore.type", typeName)))
}

// Counter selectors for Inc.
func RecordsInserted(m *StoreMetrics) metric.Int64Counter  { return m.RecordsInserted }
func RecordsDeleted(m *StoreMetrics) metric.Int64Counter   { return m.RecordsDeleted }
func DuplicateInserts(m *StoreMetrics) metric.Int64Counter { return m.DuplicateInserts }
func RecordsDropped(m *StoreMetrics) metric.Int64Counter   { return m.RecordsDropped }
func PagesAllocated(m *StoreMetrics) metric.Int64Counter   { return m.PagesAllocated }
func FileRewrites(m *StoreMetrics) metric.Int64Counter     { return m.FileRewrites }
func TypesCreated(m *StoreMetrics) metric.Int64Counter     { return m.TypesCreated }
func TypesDeleted(m *StoreMetrics) metric.Int64Counter     { return m.TypesDeleted }
