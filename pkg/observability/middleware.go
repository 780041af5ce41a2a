package observability

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const httpOpPrefix = "http "

// HandlerOption configures InstrumentHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	tracer     trace.Tracer
	metrics    *REDMetrics
	propagator propagation.TextMapPropagator
}

// WithHandlerTracer opens one server span per request, named "METHOD /path".
func WithHandlerTracer(tracer trace.Tracer) HandlerOption {
	return func(c *handlerConfig) { c.tracer = tracer }
}

// WithHandlerMetrics records RED metrics per request with op "http /path".
func WithHandlerMetrics(metrics *REDMetrics) HandlerOption {
	return func(c *handlerConfig) { c.metrics = metrics }
}

// WithPropagator overrides the global propagator used for incoming trace headers.
func WithPropagator(prop propagation.TextMapPropagator) HandlerOption {
	return func(c *handlerConfig) { c.propagator = prop }
}

// statusRecorder remembers the response status. Handlers that never call
// WriteHeader answer 200.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler wraps next with the configured tracing and metrics.
// Without options it returns next unchanged.
func InstrumentHandler(next http.Handler, opts ...HandlerOption) http.Handler {
	cfg := handlerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.tracer == nil && cfg.metrics == nil {
		return next
	}

	if cfg.propagator == nil {
		cfg.propagator = otel.GetTextMapPropagator()
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		start := time.Now()
		ctx := cfg.propagator.Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))
		op := httpOpPrefix + hr.URL.Path

		var span trace.Span
		if cfg.tracer != nil {
			ctx, span = cfg.tracer.Start(ctx, hr.Method+" "+hr.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(hr.Method),
					attribute.String("http.target", hr.URL.Path),
				),
			)
			defer span.End()
		}

		if cfg.metrics != nil {
			defer cfg.metrics.TrackInflight(ctx, op)()
		}

		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(rec, hr.WithContext(ctx))

		failed := rec.status >= http.StatusInternalServerError

		if span != nil {
			span.SetAttributes(semconv.HTTPResponseStatusCode(rec.status))

			if failed {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		}

		if cfg.metrics != nil {
			status := StatusOK
			if failed {
				status = StatusError
			}

			cfg.metrics.RecordRequest(ctx, op, status, time.Since(start))
		}
	})
}
