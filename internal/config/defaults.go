// Package config provides YAML-based configuration for compatstats.
package config

import (
	"github.com/Sumatoshi-tech/compatstats/internal/compatdata"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

// Data source defaults.
const (
	DefaultDataRoot    = "."
	DefaultVersionFile = compatdata.DefaultVersionFile
)

// Stats defaults.
const (
	DefaultMaxRecentAPIs   = compat.DefaultMaxRecentAPIs
	DefaultTimelineWindow  = compat.DefaultTimelineWindow
	DefaultSharedThreshold = compat.DefaultSharedThreshold
)

// Output defaults.
const (
	DefaultOutputPath     = "api-stats.json"
	DefaultOutputIndent   = true
	DefaultOutputCompress = false
	DefaultOutputTheme    = ThemeDark
)

// History defaults.
const (
	DefaultHistoryEnabled = false
	DefaultHistoryPath    = ".compatstats/history.db"
)

// Publish defaults.
const (
	DefaultPublishRegion = "us-east-1"
	DefaultPublishPrefix = "compat-stats"
	DefaultPublishUseSSL = true
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Dashboard themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// DefaultExcludeDirs are never treated as categories.
func DefaultExcludeDirs() []string {
	return compatdata.DefaultExcludeDirs()
}

// DefaultCategories lists the categories of the Lynx compat data in report order.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Path: "elements", DisplayName: "Elements", DocPrefix: "/api/elements/built-in"},
		{Path: "css/properties", DisplayName: "CSS Properties", DocPrefix: "/api/css/properties"},
		{Path: "css/at-rule", DisplayName: "CSS At-Rules", DocPrefix: "/api/css/at-rule"},
		{Path: "css/data-type", DisplayName: "CSS Data Types", DocPrefix: "/api/css/data-type"},
		{Path: "lynx-api", DisplayName: "Lynx API", DocPrefix: "/api/lynx-api"},
		{Path: "lynx-native-api", DisplayName: "Lynx Native API", DocPrefix: "/api/lynx-native-api"},
		{Path: "react", DisplayName: "ReactLynx", DocPrefix: "/api/react"},
		{Path: "devtool", DisplayName: "DevTool", DocPrefix: "/guide/devtool"},
		{Path: "errors", DisplayName: "Errors", DocPrefix: "/api/errors"},
	}
}
