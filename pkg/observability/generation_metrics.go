package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal       = "compatstats.generation.runs.total"
	metricFeatures        = "compatstats.generation.features"
	metricSharedFeatures  = "compatstats.generation.shared_features"
	metricCategories      = "compatstats.generation.categories"
	metricMissingCategory = "compatstats.generation.missing_categories.total"
	metricRunDuration     = "compatstats.generation.duration.seconds"
	metricCoverage        = "compatstats.platform.coverage.percent"

	attrPlatform = "platform"
)

// generationBuckets spans small fixtures to the full compat data tree.
var generationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// GenerationMetrics holds the instruments of report generation.
type GenerationMetrics struct {
	runs              metric.Int64Counter
	features          metric.Int64Gauge
	sharedFeatures    metric.Int64Gauge
	categories        metric.Int64Gauge
	missingCategories metric.Int64Counter
	duration          metric.Float64Histogram
	coverage          metric.Int64Gauge
}

// GenerationStats summarizes one generation run.
type GenerationStats struct {
	Features          int
	SharedFeatures    int
	Categories        int
	MissingCategories int
	Duration          time.Duration
	// Coverage is the global coverage percent per platform.
	Coverage map[string]int
}

// NewGenerationMetrics creates generation instruments from the given meter.
func NewGenerationMetrics(mt metric.Meter) (*GenerationMetrics, error) {
	set := newInstrumentSet(mt)

	gm := &GenerationMetrics{
		runs: set.counter(instrument{
			name: metricRunsTotal, desc: "Completed generation runs", unit: "{run}",
		}),
		features: set.gauge(instrument{
			name: metricFeatures, desc: "Features in the last report", unit: "{feature}",
		}),
		sharedFeatures: set.gauge(instrument{
			name: metricSharedFeatures, desc: "Features supported by at least two platforms", unit: "{feature}",
		}),
		categories: set.gauge(instrument{
			name: metricCategories, desc: "Categories in the last report", unit: "{category}",
		}),
		missingCategories: set.counter(instrument{
			name: metricMissingCategory, desc: "Configured categories without a directory", unit: "{category}",
		}),
		duration: set.histogram(instrument{
			name: metricRunDuration, desc: "Generation duration", unit: "s", buckets: generationBuckets,
		}),
		coverage: set.gauge(instrument{
			name: metricCoverage, desc: "Global coverage percent per platform", unit: "%",
		}),
	}

	err := set.err()
	if err != nil {
		return nil, err
	}

	return gm, nil
}

// RecordRun records one completed run. Safe to call on a nil receiver.
func (gm *GenerationMetrics) RecordRun(ctx context.Context, stats GenerationStats) {
	if gm == nil {
		return
	}

	gm.runs.Add(ctx, 1)
	gm.features.Record(ctx, int64(stats.Features))
	gm.sharedFeatures.Record(ctx, int64(stats.SharedFeatures))
	gm.categories.Record(ctx, int64(stats.Categories))
	gm.missingCategories.Add(ctx, int64(stats.MissingCategories))
	gm.duration.Record(ctx, stats.Duration.Seconds())

	for platform, pct := range stats.Coverage {
		gm.coverage.Record(ctx, int64(pct), metric.WithAttributes(attribute.String(attrPlatform, platform)))
	}
}
