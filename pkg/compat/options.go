package compat

import (
	"errors"
	"fmt"
	"slices"
)

// Default platform identifiers.
const (
	PlatformAndroid     = "android"
	PlatformIOS         = "ios"
	PlatformHarmony     = "harmony"
	PlatformWebLynx     = "web_lynx"
	PlatformClayAndroid = "clay_android"
	PlatformClayIOS     = "clay_ios"
	PlatformClayMacOS   = "clay_macos"
	PlatformClayWindows = "clay_windows"

	// PlatformClay is the virtual aggregate of the clay sub-platforms.
	PlatformClay = "clay"
)

// Report shaping defaults.
const (
	DefaultMaxRecentAPIs   = 100
	DefaultTimelineWindow  = 10
	DefaultSharedThreshold = 2
)

// Sentinel option errors.
var (
	ErrNoTrackedPlatforms   = errors.New("at least one tracked platform is required")
	ErrUntrackedSubPlatform = errors.New("clay sub-platform is not tracked")
	ErrClayNameCollision    = errors.New("clay name collides with a tracked platform")
	ErrInvalidThreshold     = errors.New("shared threshold must be at least 1")
)

// Options fixes the platforms and report shaping for a generation run.
type Options struct {
	// TrackedPlatforms are measured, in report order.
	TrackedPlatforms []string
	// ClayName is the virtual platform derived from ClaySubPlatforms.
	// Empty disables clay synthesis.
	ClayName string
	// ClaySubPlatforms must all be tracked.
	ClaySubPlatforms []string
	// RecentVersions are version prefixes that mark an API as recently added.
	RecentVersions []string
	// MaxRecentAPIs caps the recent_apis list.
	MaxRecentAPIs int
	// TimelineWindow is how many trailing history entries become timeline points.
	TimelineWindow int
	// SharedThreshold is the supporter count at which a feature is shared.
	SharedThreshold int
}

// DefaultOptions returns the platforms and windows of the Lynx compat data.
func DefaultOptions() Options {
	return Options{
		TrackedPlatforms: []string{
			PlatformAndroid,
			PlatformIOS,
			PlatformHarmony,
			PlatformWebLynx,
			PlatformClayAndroid,
			PlatformClayIOS,
			PlatformClayMacOS,
			PlatformClayWindows,
		},
		ClayName: PlatformClay,
		ClaySubPlatforms: []string{
			PlatformClayAndroid,
			PlatformClayIOS,
			PlatformClayMacOS,
			PlatformClayWindows,
		},
		RecentVersions:  []string{"3.4", "3.5"},
		MaxRecentAPIs:   DefaultMaxRecentAPIs,
		TimelineWindow:  DefaultTimelineWindow,
		SharedThreshold: DefaultSharedThreshold,
	}
}

// Validate checks that the options describe a consistent platform set.
func (o Options) Validate() error {
	if len(o.TrackedPlatforms) == 0 {
		return ErrNoTrackedPlatforms
	}

	if o.SharedThreshold < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, o.SharedThreshold)
	}

	if o.ClayName == "" {
		return nil
	}

	if slices.Contains(o.TrackedPlatforms, o.ClayName) {
		return fmt.Errorf("%w: %s", ErrClayNameCollision, o.ClayName)
	}

	for _, sub := range o.ClaySubPlatforms {
		if !slices.Contains(o.TrackedPlatforms, sub) {
			return fmt.Errorf("%w: %s", ErrUntrackedSubPlatform, sub)
		}
	}

	return nil
}

// NativePlatforms returns the tracked platforms that are not clay sub-platforms.
func (o Options) NativePlatforms() []string {
	out := make([]string, 0, len(o.TrackedPlatforms))

	for _, p := range o.TrackedPlatforms {
		if !slices.Contains(o.ClaySubPlatforms, p) {
			out = append(out, p)
		}
	}

	return out
}

// ReportPlatforms lists the tracked platforms followed by the clay aggregate.
func (o Options) ReportPlatforms() []string {
	out := slices.Clone(o.TrackedPlatforms)
	if o.ClayEnabled() {
		out = append(out, o.ClayName)
	}

	return out
}
