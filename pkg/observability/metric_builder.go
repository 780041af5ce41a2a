package observability

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrument names and documents one metric.
type instrument struct {
	name    string
	desc    string
	unit    string
	buckets []float64
}

// instrumentSet creates instruments on one meter and collects every
// creation failure for a single check by the caller.
type instrumentSet struct {
	meter metric.Meter
	errs  []error
}

func newInstrumentSet(mt metric.Meter) *instrumentSet {
	return &instrumentSet{meter: mt}
}

func (s *instrumentSet) counter(in instrument) metric.Int64Counter {
	c, err := s.meter.Int64Counter(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	s.track(in, err)

	return c
}

func (s *instrumentSet) upDownCounter(in instrument) metric.Int64UpDownCounter {
	c, err := s.meter.Int64UpDownCounter(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	s.track(in, err)

	return c
}

func (s *instrumentSet) gauge(in instrument) metric.Int64Gauge {
	g, err := s.meter.Int64Gauge(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	s.track(in, err)

	return g
}

func (s *instrumentSet) histogram(in instrument) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(in.desc), metric.WithUnit(in.unit)}
	if len(in.buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(in.buckets...))
	}

	h, err := s.meter.Float64Histogram(in.name, opts...)
	s.track(in, err)

	return h
}

func (s *instrumentSet) track(in instrument, err error) {
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("create %s: %w", in.name, err))
	}
}

// err joins every creation failure, or returns nil.
func (s *instrumentSet) err() error {
	return errors.Join(s.errs...)
}
