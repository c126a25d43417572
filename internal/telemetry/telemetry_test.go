package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	return totals
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(ctx) })

	m, err := NewMetrics(provider)
	require.NoError(t, err)

	m.Upload(ctx, false, 100)
	m.Upload(ctx, true, 100)
	m.Download(ctx)
	m.Download(ctx)
	m.Favorite(ctx, 1)
	m.Favorite(ctx, 1)
	m.Favorite(ctx, -1)

	totals := collect(t, reader)
	assert.Equal(t, int64(2), totals["showcase.uploads"])
	assert.Equal(t, int64(100), totals["showcase.upload.bytes"])
	assert.Equal(t, int64(2), totals["showcase.downloads"])
	assert.Equal(t, int64(1), totals["showcase.favorites"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Upload(context.Background(), false, 1)
		m.Download(context.Background())
		m.Favorite(context.Background(), 1)
	})
}
