package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/internal/config"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

const (
	testMaxRecentAPIs  = 25
	testTimelineWindow = 5
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".compatstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultDataRoot, cfg.Data.Root)
	assert.Equal(t, config.DefaultVersionFile, cfg.Data.VersionFile)
	assert.Equal(t, config.DefaultExcludeDirs(), cfg.Data.ExcludeDirs)
	assert.Equal(t, compat.DefaultOptions(), cfg.CompatOptions())
	assert.Equal(t, config.DefaultCategories(), cfg.Categories)
	assert.Equal(t, config.DefaultOutputPath, cfg.Output.Path)
	assert.True(t, cfg.Output.Indent)
	assert.Equal(t, config.ThemeDark, cfg.Output.Theme)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, config.DefaultHistoryPath, cfg.History.Path)
	assert.False(t, cfg.Publish.Enabled)
	assert.Equal(t, config.DefaultPublishRegion, cfg.Publish.Region)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	content := `data:
  root: ./compat
  version_file: meta/version.json
platforms:
  tracked: [android, ios, clay_macos]
  clay_name: clay
  clay_sub_platforms: [clay_macos]
stats:
  recent_versions: ["3.6"]
  max_recent_apis: 25
  timeline_window: 5
  shared_threshold: 2
categories:
  - path: elements
    display_name: Elements
    doc_prefix: /api/elements/built-in
output:
  path: out/stats.json
  indent: false
  compress: true
  plot: out/stats.html
  theme: light
history:
  enabled: true
  path: /tmp/history.db
publish:
  enabled: true
  endpoint: localhost:9000
  bucket: stats
  use_ssl: false
`

	cfg, err := config.LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "./compat", cfg.Data.Root)
	assert.Equal(t, "meta/version.json", cfg.Data.VersionFile)
	assert.Equal(t, []string{"android", "ios", "clay_macos"}, cfg.Platforms.Tracked)
	assert.Equal(t, []string{"clay_macos"}, cfg.Platforms.ClaySubPlatforms)
	assert.Equal(t, []string{"3.6"}, cfg.Stats.RecentVersions)
	assert.Equal(t, testMaxRecentAPIs, cfg.Stats.MaxRecentAPIs)
	assert.Equal(t, testTimelineWindow, cfg.Stats.TimelineWindow)
	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, "Elements", cfg.Categories[0].DisplayName)
	assert.False(t, cfg.Output.Indent)
	assert.True(t, cfg.Output.Compress)
	assert.Equal(t, config.ThemeLight, cfg.Output.Theme)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "stats", cfg.Publish.Bucket)
	assert.False(t, cfg.Publish.UseSSL)
	assert.Equal(t, config.DefaultPublishPrefix, cfg.Publish.Prefix)
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "output: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_InvalidValues_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "output:\n  theme: neon\n"))
	require.ErrorIs(t, err, config.ErrInvalidTheme)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("COMPATSTATS_OUTPUT_PATH", "env-stats.json")
	t.Setenv("COMPATSTATS_STATS_MAX_RECENT_APIS", "7")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "env-stats.json", cfg.Output.Path)
	assert.Equal(t, 7, cfg.Stats.MaxRecentAPIs)
}
