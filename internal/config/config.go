package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/compatstats/internal/compatdata"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

// Config is the top-level configuration struct for compatstats.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Platforms  PlatformsConfig  `mapstructure:"platforms"`
	Stats      StatsConfig      `mapstructure:"stats"`
	Categories []CategoryConfig `mapstructure:"categories"`
	Output     OutputConfig     `mapstructure:"output"`
	History    HistoryConfig    `mapstructure:"history"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DataConfig locates the compat data.
type DataConfig struct {
	Root        string   `mapstructure:"root"`
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
	VersionFile string   `mapstructure:"version_file"`
	// Schema overrides the embedded compat data schema.
	Schema string `mapstructure:"schema"`
}

// PlatformsConfig fixes the measured platforms.
type PlatformsConfig struct {
	Tracked          []string `mapstructure:"tracked"`
	ClayName         string   `mapstructure:"clay_name"`
	ClaySubPlatforms []string `mapstructure:"clay_sub_platforms"`
}

// StatsConfig shapes the report.
type StatsConfig struct {
	RecentVersions  []string `mapstructure:"recent_versions"`
	MaxRecentAPIs   int      `mapstructure:"max_recent_apis"`
	TimelineWindow  int      `mapstructure:"timeline_window"`
	SharedThreshold int      `mapstructure:"shared_threshold"`
}

// CategoryConfig is one category directory of the compat data.
type CategoryConfig struct {
	Path        string `mapstructure:"path"`
	DisplayName string `mapstructure:"display_name"`
	DocPrefix   string `mapstructure:"doc_prefix"`
}

// OutputConfig controls the written artifacts.
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	Indent   bool   `mapstructure:"indent"`
	Compress bool   `mapstructure:"compress"`
	Plot     string `mapstructure:"plot"`
	Theme    string `mapstructure:"theme"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// PublishConfig holds the S3-compatible upload target.
type PublishConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMaxRecentAPIs indicates the recent API cap is not positive.
	ErrInvalidMaxRecentAPIs = errors.New("stats.max_recent_apis must be positive")
	// ErrInvalidTimelineWindow indicates the timeline window is not positive.
	ErrInvalidTimelineWindow = errors.New("stats.timeline_window must be positive")
	// ErrDuplicateCategory indicates two categories share a path.
	ErrDuplicateCategory = errors.New("duplicate category path")
	// ErrEmptyCategoryPath indicates a category without a path.
	ErrEmptyCategoryPath = errors.New("category path must not be empty")
	// ErrInvalidTheme indicates an unknown dashboard theme.
	ErrInvalidTheme = errors.New("output.theme must be dark or light")
	// ErrPublishTarget indicates publishing is enabled without a target.
	ErrPublishTarget = errors.New("publish requires endpoint and bucket")
	// ErrEmptyOutputPath indicates a missing report path.
	ErrEmptyOutputPath = errors.New("output.path must not be empty")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	err := c.CompatOptions().Validate()
	if err != nil {
		return fmt.Errorf("platforms: %w", err)
	}

	statsErr := c.validateStats()
	if statsErr != nil {
		return statsErr
	}

	categoriesErr := c.validateCategories()
	if categoriesErr != nil {
		return categoriesErr
	}

	return c.validateOutput()
}

func (c *Config) validateStats() error {
	if c.Stats.MaxRecentAPIs <= 0 {
		return ErrInvalidMaxRecentAPIs
	}

	if c.Stats.TimelineWindow <= 0 {
		return ErrInvalidTimelineWindow
	}

	return nil
}

func (c *Config) validateCategories() error {
	seen := make(map[string]bool, len(c.Categories))

	for _, cat := range c.Categories {
		if cat.Path == "" {
			return ErrEmptyCategoryPath
		}

		if seen[cat.Path] {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, cat.Path)
		}

		seen[cat.Path] = true
	}

	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Path == "" {
		return ErrEmptyOutputPath
	}

	if c.Output.Theme != ThemeDark && c.Output.Theme != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Output.Theme)
	}

	if c.Publish.Enabled && (c.Publish.Endpoint == "" || c.Publish.Bucket == "") {
		return ErrPublishTarget
	}

	return nil
}

// CompatOptions converts the platform and stats sections to generator options.
func (c *Config) CompatOptions() compat.Options {
	return compat.Options{
		TrackedPlatforms: c.Platforms.Tracked,
		ClayName:         c.Platforms.ClayName,
		ClaySubPlatforms: c.Platforms.ClaySubPlatforms,
		RecentVersions:   c.Stats.RecentVersions,
		MaxRecentAPIs:    c.Stats.MaxRecentAPIs,
		TimelineWindow:   c.Stats.TimelineWindow,
		SharedThreshold:  c.Stats.SharedThreshold,
	}
}

// LoaderCategories converts the categories section for the data loader.
func (c *Config) LoaderCategories() []compatdata.Category {
	out := make([]compatdata.Category, 0, len(c.Categories))

	for _, cat := range c.Categories {
		out = append(out, compatdata.Category{Path: cat.Path, DisplayName: cat.DisplayName, DocPrefix: cat.DocPrefix})
	}

	return out
}

// NewLoader builds a data loader from the data section.
func (c *Config) NewLoader(opts ...compatdata.LoaderOption) *compatdata.Loader {
	opts = append([]compatdata.LoaderOption{
		compatdata.WithExcludeDirs(c.Data.ExcludeDirs),
		compatdata.WithVersionFile(c.Data.VersionFile),
	}, opts...)

	return compatdata.NewLoader(c.Data.Root, opts...)
}
