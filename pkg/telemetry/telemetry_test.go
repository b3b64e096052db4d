package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	tel, shutdown, err := New(Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, tel.Registry)
	assert.NotNil(t, tel.Tracer)
	assert.NotNil(t, tel.Meter)
	require.NoError(t, shutdown(context.Background()))
}

func TestNew_ExportsToRegistry(t *testing.T) {
	ctx := context.Background()
	tel, shutdown, err := New(Config{Enabled: true, ServiceName: "pagestore-test"})
	require.NoError(t, err)
	defer func() { require.NoError(t, shutdown(ctx)) }()

	counter, err := tel.Meter.Int64Counter("pagestore.test.events")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	families, err := tel.Registry.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "pagestore_test_events") {
			found = true
		}
	}
	assert.True(t, found, "exported counter should be gathered from the registry")
}
