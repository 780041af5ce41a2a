package compat

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TracerName is the tracer used for generation spans.
const TracerName = "compatstats.compat"

// GeneratedAtLayout is the timestamp layout of APIStats.GeneratedAt.
const GeneratedAtLayout = "2006-01-02T15:04:05.000Z"

const featureIDPrefix = "feature-"

// Input is everything a generation run reads.
type Input struct {
	// Categories are aggregated in the given order.
	Categories []CategoryInput
	// History is the version history, oldest first.
	History []VersionEntry
}

// Generator builds APIStats reports.
type Generator struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for warnings and the run summary.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTracer sets the tracer for generation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generator) {
		if tracer != nil {
			g.tracer = tracer
		}
	}
}

// WithClock overrides the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator validates opts and returns a Generator.
func NewGenerator(opts Options, options ...Option) (*Generator, error) {
	err := opts.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	g := &Generator{
		opts:   opts,
		logger: slog.Default(),
		tracer: nooptrace.NewTracerProvider().Tracer(TracerName),
		now:    time.Now,
	}

	for _, o := range options {
		o(g)
	}

	return g, nil
}

// Options returns the options the generator was built with.
func (g *Generator) Options() Options { return g.opts }

// Generate aggregates every category of in and assembles the report.
func (g *Generator) Generate(ctx context.Context, in Input) (*APIStats, error) {
	ctx, span := g.tracer.Start(ctx, "compat.generate",
		trace.WithAttributes(attribute.Int("compat.categories", len(in.Categories))),
	)
	defer span.End()

	tracked := g.opts.TrackedPlatforms

	stats := &APIStats{
		GeneratedAt: g.now().UTC().Format(GeneratedAtLayout),
		Categories:  make(map[string]CategoryDetail, len(in.Categories)),
		RecentAPIs:  []RecentAPI{},
		Features:    []Feature{},
	}

	globalTotal := 0
	globalSupported := make(map[string]int, len(tracked))

	var recent []RecentAPI

	for _, cat := range in.Categories {
		err := ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}

		g.logger.DebugContext(ctx, "processing category", "category", cat.Key, "documents", len(cat.Documents))

		result := g.aggregateCategory(cat)
		stats.Categories[cat.Key] = result.detail

		globalTotal += result.detail.Stats.Total
		for _, p := range tracked {
			globalSupported[p] += result.detail.Stats.Supported[p]
		}

		recent = append(recent, result.recent...)

		for _, api := range result.detail.APIDetails {
			stats.Features = append(stats.Features, g.newFeature(len(stats.Features), cat.Key, api))
		}
	}

	stats.Summary = Summary{
		TotalAPIs:  globalTotal,
		ByPlatform: make(map[string]PlatformStats, len(tracked)+1),
	}

	for _, p := range tracked {
		stats.Summary.ByPlatform[p] = PlatformStats{
			SupportedCount:  globalSupported[p],
			CoveragePercent: percent(globalSupported[p], globalTotal),
			ExclusiveCount:  exclusiveFeatures(stats.Features, tracked, p),
		}
	}

	sortByName(recent)

	if len(recent) > g.opts.MaxRecentAPIs && g.opts.MaxRecentAPIs > 0 {
		recent = recent[:g.opts.MaxRecentAPIs]
	}

	if recent != nil {
		stats.RecentAPIs = recent
	}

	stats.Timeline = buildTimeline(stats.Features, in.History, g.opts)

	synthesizeClay(stats, g.opts)

	stats.Summary.ByCategory = make(map[string]CategoryStats, len(stats.Categories))
	for key, cat := range stats.Categories {
		stats.Summary.ByCategory[key] = cat.Stats
	}

	span.SetAttributes(
		attribute.Int("compat.total_apis", globalTotal),
		attribute.Int("compat.features", len(stats.Features)),
	)

	g.logSummary(ctx, stats)

	return stats, nil
}

func (g *Generator) newFeature(index int, category string, api APIInfo) Feature {
	support := make(map[string]SupportStatement, len(g.opts.TrackedPlatforms))

	for _, p := range g.opts.TrackedPlatforms {
		support[p] = SupportStatement{VersionAdded: api.Support[p]}
	}

	return Feature{
		ID:         featureIDPrefix + strconv.Itoa(index),
		Query:      Query(api.Path),
		Name:       api.Name,
		Category:   category,
		SourceFile: SourceFile(api.Path),
		Support:    support,
	}
}

// exclusiveFeatures counts features whose only supporter is platform.
func exclusiveFeatures(features []Feature, tracked []string, platform string) int {
	n := 0

	for _, f := range features {
		supporters := FeatureSupporters(f, tracked)
		if len(supporters) == 1 && supporters[0] == platform {
			n++
		}
	}

	return n
}

// sortByName orders recent APIs by locale-aware name comparison.
func sortByName(apis []RecentAPI) {
	c := collate.New(language.English)

	slices.SortStableFunc(apis, func(a, b RecentAPI) int {
		return c.CompareString(a.Name, b.Name)
	})
}

func (g *Generator) logSummary(ctx context.Context, stats *APIStats) {
	g.logger.InfoContext(ctx, "generation complete",
		"total_apis", stats.Summary.TotalAPIs,
		"features", len(stats.Features),
		"timeline_points", len(stats.Timeline),
	)

	for _, p := range g.opts.ReportPlatforms() {
		ps := stats.Summary.ByPlatform[p]

		g.logger.InfoContext(ctx, "platform coverage",
			"platform", p,
			"supported", ps.SupportedCount,
			"total", stats.Summary.TotalAPIs,
			"coverage_percent", ps.CoveragePercent,
			"exclusive", ps.ExclusiveCount,
		)
	}
}
