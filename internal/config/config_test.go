package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/internal/config"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

func validConfig() config.Config {
	opts := compat.DefaultOptions()

	return config.Config{
		Data: config.DataConfig{Root: ".", VersionFile: config.DefaultVersionFile},
		Platforms: config.PlatformsConfig{
			Tracked:          opts.TrackedPlatforms,
			ClayName:         opts.ClayName,
			ClaySubPlatforms: opts.ClaySubPlatforms,
		},
		Stats: config.StatsConfig{
			RecentVersions:  opts.RecentVersions,
			MaxRecentAPIs:   opts.MaxRecentAPIs,
			TimelineWindow:  opts.TimelineWindow,
			SharedThreshold: opts.SharedThreshold,
		},
		Categories: config.DefaultCategories(),
		Output:     config.OutputConfig{Path: config.DefaultOutputPath, Theme: config.ThemeDark},
	}
}

func TestValidate_ValidConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"no platforms", func(c *config.Config) { c.Platforms.Tracked = nil }, compat.ErrNoTrackedPlatforms},
		{"untracked sub-platform", func(c *config.Config) {
			c.Platforms.ClaySubPlatforms = []string{"clay_linux"}
		}, compat.ErrUntrackedSubPlatform},
		{"clay collision", func(c *config.Config) { c.Platforms.ClayName = "ios" }, compat.ErrClayNameCollision},
		{"threshold", func(c *config.Config) { c.Stats.SharedThreshold = 0 }, compat.ErrInvalidThreshold},
		{"max recent", func(c *config.Config) { c.Stats.MaxRecentAPIs = 0 }, config.ErrInvalidMaxRecentAPIs},
		{"timeline window", func(c *config.Config) { c.Stats.TimelineWindow = -1 }, config.ErrInvalidTimelineWindow},
		{"duplicate category", func(c *config.Config) {
			c.Categories = append(c.Categories, config.CategoryConfig{Path: "react"})
		}, config.ErrDuplicateCategory},
		{"empty category", func(c *config.Config) {
			c.Categories = []config.CategoryConfig{{DisplayName: "x"}}
		}, config.ErrEmptyCategoryPath},
		{"theme", func(c *config.Config) { c.Output.Theme = "neon" }, config.ErrInvalidTheme},
		{"output path", func(c *config.Config) { c.Output.Path = "" }, config.ErrEmptyOutputPath},
		{"publish target", func(c *config.Config) {
			c.Publish.Enabled = true
			c.Publish.Endpoint = "localhost:9000"
		}, config.ErrPublishTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoaderCategories_PreservesOrder(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cats := cfg.LoaderCategories()

	require.Len(t, cats, len(cfg.Categories))
	assert.Equal(t, "elements", cats[0].Path)
	assert.Equal(t, cfg.Categories[0].DocPrefix, cats[0].DocPrefix)
}

func TestNewLoader_UsesDataRoot(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Data.Root = t.TempDir()

	assert.Equal(t, cfg.Data.Root, cfg.NewLoader().Root())
}
