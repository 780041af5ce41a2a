package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/compatstats/internal/history"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
	"github.com/Sumatoshi-tech/compatstats/pkg/terminal"
)

const (
	defaultHistoryLimit = 10
	trendBarWidth       = 20
)

// NewHistoryCommand creates the history subcommand.
func NewHistoryCommand(global *GlobalFlags) *cobra.Command {
	var (
		dbPath   string
		limit    int
		platform string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded generation runs",
		Long: `List the most recent generation runs recorded in the history database,
or the coverage trend of one platform with --platform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			if dbPath == "" {
				dbPath = a.cfg.History.Path
			}

			ctx := cmd.Context()

			store, err := history.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if platform != "" {
				points, trendErr := store.Trend(ctx, platform, limit)
				if trendErr != nil {
					return trendErr
				}

				return writeTrend(a.out, platform, points)
			}

			runs, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}

			return writeRuns(a.out, runs, a.cfg.CompatOptions().ReportPlatforms())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "history database (default history.path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of runs to show")
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "show the coverage trend of one platform")

	return cmd
}

func writeRuns(w io.Writer, runs []history.Run, platforms []string) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")

		return err
	}

	header := table.Row{"Run", "Generated", "Shared APIs", "Features"}
	for _, p := range platforms {
		header = append(header, p)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(header)

	for _, r := range runs {
		row := table.Row{r.ID, r.GeneratedAt, r.TotalAPIs, r.Features}

		for _, p := range platforms {
			if ps, ok := r.Platforms[p]; ok {
				row = append(row, fmt.Sprintf("%d%%", ps.CoveragePercent))
			} else {
				row = append(row, "-")
			}
		}

		tbl.AppendRow(row)
	}

	_, err := fmt.Fprintln(w, tbl.Render())

	return err
}

func writeTrend(w io.Writer, platform string, points []history.TrendPoint) error {
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, "No runs recorded for %s.\n", platform)

		return err
	}

	term := terminal.NewConfig()

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(platform)
	tbl.AppendHeader(table.Row{"Run", "Generated", "Supported", "Coverage", "Exclusive", ""})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, p := range points {
		tbl.AppendRow(table.Row{
			p.RunID, p.GeneratedAt, p.SupportedCount,
			fmt.Sprintf("%d%%", p.CoveragePercent), p.ExclusiveCount,
			term.Colorize(terminal.DrawBar(p.CoveragePercent, trendBarWidth), terminal.ColorForCoverage(p.CoveragePercent)),
		})
	}

	_, err := fmt.Fprintln(w, tbl.Render())

	return err
}
