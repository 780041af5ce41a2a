package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/internal/dashboard"
	"github.com/Sumatoshi-tech/compatstats/internal/render"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
	"github.com/Sumatoshi-tech/compatstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/compatstats/pkg/terminal"
)

// Render formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format (want text, json, yaml or html)")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand(global *GlobalFlags) *cobra.Command {
	var (
		format   string
		output   string
		theme    string
		platform string
	)

	cmd := &cobra.Command{
		Use:   "render <report>",
		Short: "Render a generated report as text, JSON, YAML or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, global, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			if theme == "" {
				theme = a.cfg.Output.Theme
			}

			stats, err := artifact.Read(args[0])
			if err != nil {
				return err
			}

			write, err := renderer(format, a, stats, theme, platform)
			if err != nil {
				return err
			}

			if output == "" {
				return write(a.out)
			}

			size, err := writeFile(output, write)
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			fmt.Fprintf(a.stdout(), "Wrote %s (%s)\n", output, artifact.File{Path: output, Size: size}.HumanSize())

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, json, yaml or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&theme, "theme", "", "dashboard theme: dark or light (default output.theme)")
	cmd.Flags().StringVar(&platform, "platform", "", "also print per-category coverage bars for this platform")

	return cmd
}

func renderer(format string, a *app, stats *compat.APIStats, theme, platform string) (func(io.Writer) error, error) {
	opts := a.cfg.CompatOptions()

	switch strings.ToLower(format) {
	case FormatText:
		r := render.NewRenderer(terminal.NewConfig(), opts)

		return func(w io.Writer) error {
			err := r.Write(w, stats)
			if err != nil || platform == "" {
				return err
			}

			_, err = fmt.Fprintf(w, "\n%s coverage by category:\n%s\n", platform, r.CategoryBars(stats, platform))

			return err
		}, nil
	case FormatJSON:
		return func(w io.Writer) error { return artifact.Encode(w, stats, true) }, nil
	case FormatYAML:
		return func(w io.Writer) error { return artifact.EncodeYAML(w, stats) }, nil
	case FormatHTML:
		t, err := plotpage.ParseTheme(theme)
		if err != nil {
			return nil, err
		}

		return func(w io.Writer) error { return dashboard.Write(w, stats, opts, t) }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// printSummary writes the plain summary printed after generation.
func printSummary(w io.Writer, a *app, stats *compat.APIStats) {
	r := render.NewRenderer(terminal.NewConfig(), a.cfg.CompatOptions())

	fmt.Fprintln(w, strings.Join(r.SummaryLines(stats), "\n"))
	fmt.Fprintf(w, "\n  Recent APIs: %d\n", len(stats.RecentAPIs))
}
