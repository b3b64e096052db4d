package internaltelemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Sum[int64]{}
}

func TestInc(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewStoreMetrics(mp.Meter("test"))
	require.NoError(t, err)

	m.Inc(ctx, RecordsInserted, "Car")
	m.Inc(ctx, RecordsInserted, "Car")
	m.Inc(ctx, RecordsInserted, "Pet")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sum := findSum(t, rm, "pagestore.records.inserted")
	byType := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("pagestore.type"))
		require.True(t, ok)
		byType[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"Car": 2, "Pet": 1}, byType)
}

func TestInc_NilIsSafe(t *testing.T) {
	var m *StoreMetrics
	assert.NotPanics(t, func() {
		m.Inc(context.Background(), FileRewrites, "Car")
	})
	assert.NotPanics(t, func() {
		NoopStoreMetrics().Inc(context.Background(), TypesCreated, "Car")
	})
}
