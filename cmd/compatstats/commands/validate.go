package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/compatstats/internal/compatdata"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

// ErrValidationFailed is returned when at least one file violates the schema.
var ErrValidationFailed = errors.New("compat data validation failed")

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand(global *GlobalFlags) *cobra.Command {
	var (
		dataRoot string
		schema   string
		jsonOut  bool
		noColor  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate compat data files against the compat data schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			if dataRoot != "" {
				a.cfg.Data.Root = dataRoot
			}

			if schema != "" {
				a.cfg.Data.Schema = schema
			}

			color.NoColor = noColor || color.NoColor //nolint:reassign // intentional override of library global

			report, err := runValidate(cmd.Context(), a)
			if err != nil {
				return err
			}

			if jsonOut {
				err = writeJSON(a.out, report)
			} else {
				printValidation(a.stdout(), report, global.Verbose)
			}

			if err != nil {
				return err
			}

			if !report.OK() {
				return fmt.Errorf("%w: %d of %d files", ErrValidationFailed, report.Invalid, len(report.Files))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dataRoot, "data", "", "compat data root (overrides data.root)")
	cmd.Flags().StringVar(&schema, "schema", "", "JSON schema file (default: embedded compat data schema)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the validation report as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(ctx context.Context, a *app) (compatdata.ValidationReport, error) {
	validator, err := compatdata.NewValidator(a.cfg.Data.Schema)
	if err != nil {
		return compatdata.ValidationReport{}, err
	}

	loader := a.cfg.NewLoader(
		compatdata.WithLogger(a.logger()),
		compatdata.WithTracer(a.providers.TracerProvider.Tracer(compatdata.TracerName)),
	)

	return loader.Validate(ctx, validator, a.cfg.LoaderCategories())
}

func printValidation(w io.Writer, report compatdata.ValidationReport, verbose bool) {
	for _, f := range report.Files {
		switch {
		case f.ParseError != "":
			color.New(color.FgRed).Fprintf(w, "✗ %s: invalid JSON: %s\n", f.Path, f.ParseError)
		case !f.Valid:
			color.New(color.FgRed).Fprintf(w, "✗ %s\n", f.Path)
			color.New(color.FgYellow).Fprintf(w, "    Compliance: %d%%\n", f.Compliance)

			for _, issue := range f.Issues {
				color.New(color.FgRed).Fprintf(w, "    - %s: %s\n", issue.Field, issue.Description)
			}
		case verbose:
			color.New(color.FgGreen).Fprintf(w, "✓ %s\n", f.Path)
		}
	}

	summary := color.New(color.FgGreen)
	if !report.OK() {
		summary = color.New(color.FgRed)
	}

	summary.Fprintf(w, "\n%d files checked: %d valid, %d invalid\n", len(report.Files), report.Valid, report.Invalid)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
