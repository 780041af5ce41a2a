package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/compatstats/internal/mcp"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

const diagnosticsShutdownTimeout = 5 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *GlobalFlags) *cobra.Command {
	var (
		report      string
		metricsAddr string
		cacheSize   int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes generated compat reports as tools:
  - compat_summary: shared API totals and per-platform coverage
  - compat_lookup:  find APIs by query path or name
  - compat_missing: shared APIs a platform does not support yet

With --metrics-addr, /metrics, /healthz and /readyz are served over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer a.close()

			if report == "" {
				report = a.cfg.Output.Path
			}

			return runMCP(cmd.Context(), a, report, metricsAddr, cacheSize)
		},
	}

	cmd.Flags().StringVar(&report, "report", "", "default report for tool calls (default output.path)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics and health probes on this address")
	cmd.Flags().IntVar(&cacheSize, "cache-size", mcp.DefaultCacheSize, "number of decoded reports kept in memory")

	return cmd
}

func runMCP(ctx context.Context, a *app, report, metricsAddr string, cacheSize int) error {
	meter := a.providers.Meter

	if metricsAddr != "" {
		diag, promMeter, err := startDiagnostics(ctx, a, metricsAddr, report)
		if err != nil {
			return err
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), diagnosticsShutdownTimeout)
			defer cancel()

			closeErr := diag(shutdownCtx)
			if closeErr != nil {
				a.logger().Warn("diagnostics shutdown failed", "error", closeErr)
			}
		}()

		meter = promMeter
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(mcp.ServerDeps{
		Logger:     a.logger(),
		Metrics:    red,
		Tracer:     a.providers.Tracer,
		ReportPath: report,
		CacheSize:  cacheSize,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

// startDiagnostics serves the Prometheus endpoint and returns its shutdown
// func and the meter that feeds it.
func startDiagnostics(
	ctx context.Context, a *app, addr, report string,
) (func(context.Context) error, metric.Meter, error) {
	handler, provider, err := observability.PrometheusHandler()
	if err != nil {
		return nil, nil, err
	}

	reportReady := func(context.Context) error {
		if report == "" {
			return nil
		}

		_, statErr := os.Stat(report)
		if statErr != nil {
			return fmt.Errorf("report unavailable: %w", statErr)
		}

		return nil
	}

	diag, err := observability.NewDiagnosticsServer(ctx, addr, handler, a.providers.Tracer, reportReady)
	if err != nil {
		_ = provider.Shutdown(ctx)

		return nil, nil, err
	}

	a.logger().InfoContext(ctx, "diagnostics listening", "addr", diag.Addr())

	shutdown := func(ctx context.Context) error {
		closeErr := diag.Close(ctx)
		provErr := provider.Shutdown(ctx)

		if closeErr != nil {
			return closeErr
		}

		return provErr
	}

	return shutdown, provider.Meter("compatstats"), nil
}
