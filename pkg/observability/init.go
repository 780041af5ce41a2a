package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName names the default tracer and meter.
const instrumentationName = "compatstats"

// Providers is what Init hands back to commands.
type Providers struct {
	Tracer         trace.Tracer
	TracerProvider trace.TracerProvider
	Meter          metric.Meter
	Logger         *slog.Logger

	// Shutdown flushes pending telemetry within the configured timeout.
	// Safe to call more than once.
	Shutdown func(ctx context.Context) error
}

// closers runs registered shutdown hooks in reverse order.
type closers []func(context.Context) error

func (c *closers) add(fn func(context.Context) error) {
	*c = append(*c, fn)
}

func (c closers) close(ctx context.Context) error {
	var errs []error

	for _, fn := range slices.Backward(c) {
		errs = append(errs, fn(ctx))
	}

	return errors.Join(errs...)
}

// Init installs process-wide tracer and meter providers plus the default
// slog logger. An empty OTLPEndpoint yields no-op providers.
func Init(cfg Config) (Providers, error) {
	ctx := context.Background()

	var hooks closers

	tp := trace.TracerProvider(nooptrace.NewTracerProvider())
	mp := metric.MeterProvider(noopmetric.NewMeterProvider())

	if cfg.OTLPEndpoint != "" {
		res, err := buildResource(ctx, cfg)
		if err != nil {
			return Providers{}, err
		}

		sdkTP, err := exportingTracerProvider(ctx, cfg, res)
		if err != nil {
			return Providers{}, err
		}

		hooks.add(sdkTP.Shutdown)

		sdkMP, err := exportingMeterProvider(ctx, cfg, res)
		if err != nil {
			return Providers{}, errors.Join(err, hooks.close(ctx))
		}

		hooks.add(sdkMP.Shutdown)

		tp, mp = sdkTP, sdkMP
		if !cfg.TraceVerbose {
			tp = NewFilteringTracerProvider(tp)
		}
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	return Providers{
		Tracer:         tp.Tracer(instrumentationName),
		TracerProvider: tp,
		Meter:          mp.Meter(instrumentationName),
		Logger:         logger,
		Shutdown:       shutdownWithin(cfg.shutdownTimeout(), hooks),
	}, nil
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSec <= 0 {
		return defaultShutdownTimeoutSec * time.Second
	}

	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

func shutdownWithin(timeout time.Duration, hooks closers) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return hooks.close(ctx)
	}
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	optional := []struct {
		value string
		attr  func(string) attribute.KeyValue
	}{
		{cfg.ServiceVersion, semconv.ServiceVersion},
		{cfg.Environment, semconv.DeploymentEnvironment},
		{string(cfg.Mode), attribute.Key("app.mode").String},
	}

	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, o.attr(o.value))
		}
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func exportingTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if cfg.OTLPHeaders != nil {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	var blocked *slog.Logger
	if cfg.DebugTrace {
		blocked = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewAttributeFilter(sdktrace.NewBatchSpanProcessor(exporter), blocked)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(selectSampler(cfg)),
	), nil
}

func exportingMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if cfg.OTLPHeaders != nil {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

// selectSampler samples everything under DebugTrace, otherwise follows the
// parent and falls back to SampleRatio for root spans.
func selectSampler(cfg Config) sdktrace.Sampler {
	root := sdktrace.AlwaysSample()

	switch {
	case cfg.DebugTrace:
		return root
	case cfg.SampleRatio > 0:
		root = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	}

	return sdktrace.ParentBased(root)
}

func buildLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	inner := slog.Handler(slog.NewTextHandler(os.Stderr, opts))
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.Environment, cfg.Mode))
}

// ParseOTLPHeaders reads OTEL_EXPORTER_OTLP_HEADERS style "k=v,k=v" lists.
// Pairs without "=" are ignored; nil means nothing usable was found.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}
