package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

func newManualMeter() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter()

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()

	red.RecordRequest(ctx, "mcp.compat_lookup", observability.StatusOK, 10*time.Millisecond)
	red.RecordRequest(ctx, "mcp.compat_lookup", observability.StatusError, time.Millisecond)

	rm := collectMetrics(t, reader)

	total := findMetric(rm, "compatstats.requests.total")
	require.NotNil(t, total)

	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, sum.DataPoints, 2)

	assert.NotNil(t, findMetric(rm, "compatstats.request.duration.seconds"))
	assert.NotNil(t, findMetric(rm, "compatstats.errors.total"))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter()

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	done := red.TrackInflight(context.Background(), "mcp.compat_summary")
	done()

	inflight := findMetric(collectMetrics(t, reader), "compatstats.inflight.requests")
	require.NotNil(t, inflight)

	sum, ok := inflight.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(0), sum.DataPoints[0].Value)
}

func TestGenerationMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter()

	gm, err := observability.NewGenerationMetrics(mp.Meter("test"))
	require.NoError(t, err)

	gm.RecordRun(context.Background(), observability.GenerationStats{
		Features:          120,
		SharedFeatures:    80,
		Categories:        9,
		MissingCategories: 1,
		Duration:          250 * time.Millisecond,
		Coverage:          map[string]int{"android": 95, "ios": 90},
	})

	rm := collectMetrics(t, reader)

	features := findMetric(rm, "compatstats.generation.features")
	require.NotNil(t, features)

	gauge, ok := features.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(120), gauge.DataPoints[0].Value)

	coverage := findMetric(rm, "compatstats.platform.coverage.percent")
	require.NotNil(t, coverage)

	coverageGauge, ok := coverage.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, coverageGauge.DataPoints, 2)

	assert.NotNil(t, findMetric(rm, "compatstats.generation.duration.seconds"))
}

func TestGenerationMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var gm *observability.GenerationMetrics

	assert.NotPanics(t, func() {
		gm.RecordRun(context.Background(), observability.GenerationStats{})
	})
}
