package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/internal/reportdiff"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

// NewDiffCommand creates the diff subcommand.
func NewDiffCommand(global *GlobalFlags) *cobra.Command {
	var unified bool

	cmd := &cobra.Command{
		Use:   "diff <old-report> <new-report>",
		Short: "Compare two generated reports",
		Long: `Compare two api-stats reports: shared API totals, per-platform coverage,
added and removed features and per-platform support changes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, global, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			older, err := artifact.Read(args[0])
			if err != nil {
				return err
			}

			newer, err := artifact.Read(args[1])
			if err != nil {
				return err
			}

			d := reportdiff.Compare(older, newer, a.cfg.CompatOptions().ReportPlatforms())
			if d.Empty() {
				fmt.Fprintln(a.out, "No differences.")

				return nil
			}

			err = d.Write(a.out)
			if err != nil || !unified {
				return err
			}

			return writeUnified(a, older, newer)
		},
	}

	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "also print a line diff of the summaries")

	return cmd
}

func writeUnified(a *app, older, newer *compat.APIStats) error {
	var oldBuf, newBuf bytes.Buffer

	err := writeJSON(&oldBuf, older.Summary)
	if err != nil {
		return err
	}

	err = writeJSON(&newBuf, newer.Summary)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.out, "\n%s", reportdiff.UnifiedLines(oldBuf.String(), newBuf.String()))

	return err
}
