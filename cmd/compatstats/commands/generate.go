package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/internal/compatdata"
	"github.com/Sumatoshi-tech/compatstats/internal/dashboard"
	"github.com/Sumatoshi-tech/compatstats/internal/history"
	"github.com/Sumatoshi-tech/compatstats/internal/publish"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
	"github.com/Sumatoshi-tech/compatstats/pkg/plotpage"
)

type generateFlags struct {
	dataRoot  string
	output    string
	plot      string
	compress  bool
	noHistory bool
	publish   bool
}

// NewGenerateCommand creates the generate subcommand.
func NewGenerateCommand(global *GlobalFlags) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the API statistics report from compat data",
		Long: `Walk the compat data tree, resolve per-platform support of every API
and write the api-stats report.

Optionally writes an HTML dashboard (--plot), records the run in the
history database and uploads the artifacts to an S3-compatible bucket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			flags.apply(cmd, a)

			return runGenerate(cmd.Context(), a, flags)
		},
	}

	cmd.Flags().StringVar(&flags.dataRoot, "data", "", "compat data root (overrides data.root)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "report path (overrides output.path)")
	cmd.Flags().StringVar(&flags.plot, "plot", "", "write an HTML dashboard to this path")
	cmd.Flags().BoolVar(&flags.compress, "compress", false, "also write an LZ4 copy of the report")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record the run in the history database")
	cmd.Flags().BoolVar(&flags.publish, "publish", false, "upload artifacts to the configured bucket")

	return cmd
}

// apply folds explicitly set flags into the loaded config.
func (f generateFlags) apply(cmd *cobra.Command, a *app) {
	if f.dataRoot != "" {
		a.cfg.Data.Root = f.dataRoot
	}

	if f.output != "" {
		a.cfg.Output.Path = f.output
	}

	if f.plot != "" {
		a.cfg.Output.Plot = f.plot
	}

	if cmd.Flags().Changed("compress") {
		a.cfg.Output.Compress = f.compress
	}

	if f.noHistory {
		a.cfg.History.Enabled = false
	}

	if f.publish {
		a.cfg.Publish.Enabled = true
	}
}

func runGenerate(ctx context.Context, a *app, flags generateFlags) error {
	start := time.Now()
	logger := a.logger()

	loader := a.cfg.NewLoader(
		compatdata.WithLogger(logger),
		compatdata.WithTracer(a.providers.TracerProvider.Tracer(compatdata.TracerName)),
	)

	warnUnconfigured(ctx, a, loader)

	input, err := loader.Load(ctx, a.cfg.LoaderCategories())
	if err != nil {
		return err
	}

	gen, err := compat.NewGenerator(a.cfg.CompatOptions(),
		compat.WithLogger(logger),
		compat.WithTracer(a.providers.Tracer),
	)
	if err != nil {
		return err
	}

	stats, err := gen.Generate(ctx, input)
	if err != nil {
		return err
	}

	result, err := artifact.Write(a.cfg.Output.Path, stats, artifact.Options{
		Indent:   a.cfg.Output.Indent,
		Compress: a.cfg.Output.Compress,
	})
	if err != nil {
		return err
	}

	if a.cfg.Output.Plot != "" {
		plotFile, plotErr := writeDashboard(a, stats)
		if plotErr != nil {
			return plotErr
		}

		result.Files = append(result.Files, plotFile)
	}

	recordGeneration(ctx, a, input, stats, time.Since(start))

	out := a.stdout()
	printSummary(out, a, stats)
	fmt.Fprintf(out, "\nWrote %s\n", result)

	if a.cfg.History.Enabled {
		runID, histErr := recordHistory(ctx, a.cfg.History.Path, stats)
		if histErr != nil {
			return histErr
		}

		logger.InfoContext(ctx, "run recorded", "run_id", runID, "db", a.cfg.History.Path)
	}

	if a.cfg.Publish.Enabled {
		return publishArtifacts(ctx, a, stats, result.Paths())
	}

	return nil
}

func warnUnconfigured(ctx context.Context, a *app, loader *compatdata.Loader) {
	extra, err := loader.Unconfigured(a.cfg.LoaderCategories())
	if err != nil {
		a.logger().DebugContext(ctx, "category discovery failed", "error", err)

		return
	}

	if len(extra) > 0 {
		a.logger().WarnContext(ctx, "category directories not configured", "dirs", strings.Join(extra, ","))
	}
}

func writeDashboard(a *app, stats *compat.APIStats) (artifact.File, error) {
	theme, err := plotpage.ParseTheme(a.cfg.Output.Theme)
	if err != nil {
		return artifact.File{}, err
	}

	path := a.cfg.Output.Plot

	size, err := writeFile(path, func(w io.Writer) error {
		return dashboard.Write(w, stats, a.cfg.CompatOptions(), theme)
	})
	if err != nil {
		return artifact.File{}, fmt.Errorf("write dashboard: %w", err)
	}

	return artifact.File{Path: path, Size: size}, nil
}

func recordGeneration(ctx context.Context, a *app, input compat.Input, stats *compat.APIStats, elapsed time.Duration) {
	metrics, err := observability.NewGenerationMetrics(a.providers.Meter)
	if err != nil {
		a.logger().WarnContext(ctx, "generation metrics unavailable", "error", err)

		return
	}

	missing := 0

	for _, cat := range input.Categories {
		if cat.Missing {
			missing++
		}
	}

	coverage := make(map[string]int, len(stats.Summary.ByPlatform))
	for platform, ps := range stats.Summary.ByPlatform {
		coverage[platform] = ps.CoveragePercent
	}

	metrics.RecordRun(ctx, observability.GenerationStats{
		Features:          len(stats.Features),
		SharedFeatures:    stats.Summary.TotalAPIs,
		Categories:        len(stats.Categories),
		MissingCategories: missing,
		Duration:          elapsed,
		Coverage:          coverage,
	})
}

func recordHistory(ctx context.Context, path string, stats *compat.APIStats) (int64, error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.Record(ctx, stats)
}

func publishArtifacts(ctx context.Context, a *app, stats *compat.APIStats, paths []string) error {
	pc := a.cfg.Publish

	pub, err := publish.New(publish.Config{
		Endpoint:  pc.Endpoint,
		Bucket:    pc.Bucket,
		Prefix:    pc.Prefix,
		Region:    pc.Region,
		AccessKey: pc.AccessKey,
		SecretKey: pc.SecretKey,
		UseSSL:    pc.UseSSL,
	})
	if err != nil {
		return err
	}

	objects, err := pub.Publish(ctx, publish.RunID(stats.GeneratedAt), paths...)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		a.logger().InfoContext(ctx, "published", "bucket", pc.Bucket, "key", obj.Key, "size", obj.Size)
	}

	return nil
}
