package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "compatstats.requests.total"
	metricRequestDuration  = "compatstats.request.duration.seconds"
	metricErrorsTotal      = "compatstats.errors.total"
	metricInflightRequests = "compatstats.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK marks a successful request.
	StatusOK = "ok"
	// StatusError marks a failed request.
	StatusError = "error"
)

// requestBuckets covers sub-millisecond lookups up to full report reloads.
var requestBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// REDMetrics holds the Rate, Error, Duration instruments of request handlers.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	set := newInstrumentSet(mt)

	red := &REDMetrics{
		requestsTotal: set.counter(instrument{
			name: metricRequestsTotal, desc: "Handled requests by operation and status", unit: "{request}",
		}),
		requestDuration: set.histogram(instrument{
			name: metricRequestDuration, desc: "Request latency", unit: "s", buckets: requestBuckets,
		}),
		errorsTotal: set.counter(instrument{
			name: metricErrorsTotal, desc: "Failed requests by operation", unit: "{error}",
		}),
		inflightRequests: set.upDownCounter(instrument{
			name: metricInflightRequests, desc: "Requests being handled", unit: "{request}",
		}),
	}

	err := set.err()
	if err != nil {
		return nil, err
	}

	return red, nil
}

// RecordRequest records a completed request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight counter and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}
