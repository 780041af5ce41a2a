package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/cmd/compatstats/commands"
	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/internal/history"
)

const viewDoc = `{
  "elements": {
    "view": {
      "__compat": {
        "support": {
          "android": {"version_added": "1.0"},
          "ios": {"version_added": "1.0"}
        }
      },
      "clip-radius": {
        "__compat": {
          "support": {"android": {"version_added": "3.4"}}
        }
      }
    }
  }
}`

const versionDoc = `{"history": [{"version": "1.0", "release_date": "2023-03-01"}]}`

type fixture struct {
	dataRoot string
	outDir   string
	config   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dataRoot := t.TempDir()
	outDir := t.TempDir()

	writeFile(t, filepath.Join(dataRoot, "elements", "view.json"), viewDoc)
	writeFile(t, filepath.Join(dataRoot, "version.json"), versionDoc)

	cfg := strings.Join([]string{
		"data:",
		"  root: " + dataRoot,
		"categories:",
		"  - path: elements",
		"    display_name: Elements",
		"    doc_prefix: /api/elements",
		"output:",
		"  path: " + filepath.Join(outDir, "api-stats.json"),
		"history:",
		"  enabled: true",
		"  path: " + filepath.Join(outDir, "history.db"),
		"",
	}, "\n")

	cfgPath := filepath.Join(outDir, "compatstats.yaml")
	writeFile(t, cfgPath, cfg)

	return fixture{dataRoot: dataRoot, outDir: outDir, config: cfgPath}
}

func (fx fixture) generatedAt(t *testing.T) string {
	t.Helper()

	stats, err := artifact.Read(filepath.Join(fx.outDir, "api-stats.json"))
	require.NoError(t, err)

	return stats.GeneratedAt
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := commands.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"generate", "validate", "render", "diff", "history", "mcp", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "verbose", "quiet"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestGenerate_WritesReportDashboardAndHistory(t *testing.T) {
	fx := newFixture(t)
	plot := filepath.Join(fx.outDir, "dashboard.html")

	out, err := execute(t, "--config", fx.config, "generate", "--plot", plot, "--compress")
	require.NoError(t, err)

	assert.Contains(t, out, "Total APIs: 1")
	assert.Contains(t, out, "android: 1/1 (100%)")
	assert.Contains(t, out, "Wrote")

	report := filepath.Join(fx.outDir, "api-stats.json")

	stats, err := artifact.Read(report)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Summary.TotalAPIs)
	assert.Len(t, stats.Features, 2)

	compressed, err := artifact.Read(report + artifact.CompressedExt)
	require.NoError(t, err)
	assert.Equal(t, stats.GeneratedAt, compressed.GeneratedAt)

	html, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")

	store, err := history.Open(context.Background(), filepath.Join(fx.outDir, "history.db"))
	require.NoError(t, err)

	defer store.Close()

	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].TotalAPIs)
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestGenerate_QuietSuppressesSummary(t *testing.T) {
	fx := newFixture(t)

	out, err := execute(t, "--config", fx.config, "--quiet", "generate", "--no-history")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, statErr := os.Stat(filepath.Join(fx.outDir, "history.db"))
	assert.True(t, os.IsNotExist(statErr))
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestGenerate_VerboseAndQuietConflict(t *testing.T) {
	fx := newFixture(t)

	_, err := execute(t, "--config", fx.config, "-v", "-q", "generate")
	require.ErrorIs(t, err, commands.ErrVerboseQuiet)
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestValidate(t *testing.T) {
	fx := newFixture(t)

	out, err := execute(t, "--config", fx.config, "validate", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files checked: 1 valid, 0 invalid")

	writeFile(t, filepath.Join(fx.dataRoot, "elements", "broken.json"),
		`{"elements": {"x": {"__compat": {"support": {"ios": {"version_added": 3}}}}}}`)

	out, err = execute(t, "--config", fx.config, "validate", "--no-color")
	require.ErrorIs(t, err, commands.ErrValidationFailed)
	assert.Contains(t, out, "broken")
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestRender_Formats(t *testing.T) {
	fx := newFixture(t)

	_, err := execute(t, "--config", fx.config, "-q", "generate", "--no-history")
	require.NoError(t, err)

	report := filepath.Join(fx.outDir, "api-stats.json")

	out, err := execute(t, "--config", fx.config, "render", report, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "total_apis: 1")

	out, err = execute(t, "--config", fx.config, "render", report, "--platform", "android")
	require.NoError(t, err)
	assert.Contains(t, out, "android coverage by category")

	html := filepath.Join(fx.outDir, "report.html")
	_, err = execute(t, "--config", fx.config, "render", report, "-f", "html", "-o", html, "--theme", "light")
	require.NoError(t, err)
	assert.FileExists(t, html)

	_, err = execute(t, "--config", fx.config, "render", report, "--format", "pdf")
	require.ErrorIs(t, err, commands.ErrUnknownFormat)
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestDiff(t *testing.T) {
	fx := newFixture(t)

	_, err := execute(t, "--config", fx.config, "-q", "generate", "--no-history", "-o", filepath.Join(fx.outDir, "old.json"))
	require.NoError(t, err)

	writeFile(t, filepath.Join(fx.dataRoot, "elements", "text.json"), `{
  "elements": {"text": {"__compat": {"support": {
    "android": {"version_added": "2.0"},
    "harmony": {"version_added": "3.0"}
  }}}}
}`)

	_, err = execute(t, "--config", fx.config, "-q", "generate", "--no-history", "-o", filepath.Join(fx.outDir, "new.json"))
	require.NoError(t, err)

	out, err := execute(t, "--config", fx.config, "diff", "-u",
		filepath.Join(fx.outDir, "old.json"), filepath.Join(fx.outDir, "new.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Shared APIs: 1 -> 2 (+1)")
	assert.Contains(t, out, "Added features (1)")

	out, err = execute(t, "--config", fx.config, "diff",
		filepath.Join(fx.outDir, "old.json"), filepath.Join(fx.outDir, "old.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "No differences.")
}

//nolint:paralleltest // observability.Init installs process-wide providers.
func TestHistory(t *testing.T) {
	fx := newFixture(t)

	out, err := execute(t, "--config", fx.config, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	_, err = execute(t, "--config", fx.config, "-q", "generate")
	require.NoError(t, err)

	out, err = execute(t, "--config", fx.config, "history")
	require.NoError(t, err)
	assert.Contains(t, out, fx.generatedAt(t))

	out, err = execute(t, "--config", fx.config, "history", "--platform", "android")
	require.NoError(t, err)
	assert.Contains(t, out, "100%")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "compatstats "))

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}

func TestMCPCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand(&commands.GlobalFlags{})
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Long)

	for _, flag := range []string{"report", "metrics-addr", "cache-size"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}
