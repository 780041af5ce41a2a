package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the compatstats command tree.
func NewRootCommand() *cobra.Command {
	global := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "compatstats",
		Short: "Lynx compat data API statistics",
		Long: `compatstats aggregates the Lynx compat data into per-platform API
support statistics.

Commands:
  generate  Build the api-stats report (and optional dashboard)
  validate  Check compat data against the schema
  render    Print or export a generated report
  diff      Compare two reports
  history   Show recorded runs
  mcp       Serve reports to AI agents over MCP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	global.Register(root)

	root.AddCommand(
		NewGenerateCommand(global),
		NewValidateCommand(global),
		NewRenderCommand(global),
		NewDiffCommand(global),
		NewHistoryCommand(global),
		NewMCPCommand(global),
		NewVersionCommand(),
	)

	return root
}
