package compat

// APIInfo is one compatibility leaf as listed in a category's details.
type APIInfo struct {
	Path    string                  `json:"path"              yaml:"path"`
	Name    string                  `json:"name"              yaml:"name"`
	DocURL  string                  `json:"doc_url,omitempty" yaml:"doc_url,omitempty"`
	Support map[string]VersionValue `json:"support"           yaml:"support"`
}

// RecentAPI is an API added in one of the configured recent versions.
type RecentAPI struct {
	Path     string                  `json:"path"              yaml:"path"`
	Name     string                  `json:"name"              yaml:"name"`
	Category string                  `json:"category"          yaml:"category"`
	DocURL   string                  `json:"doc_url,omitempty" yaml:"doc_url,omitempty"`
	Versions map[string]VersionValue `json:"versions"          yaml:"versions"`
}

// CategoryStats holds the per-category aggregates. Total counts only
// features supported by at least the shared threshold of platforms.
type CategoryStats struct {
	Total     int            `json:"total"     yaml:"total"`
	Supported map[string]int `json:"supported" yaml:"supported"`
	Coverage  map[string]int `json:"coverage"  yaml:"coverage"`
	Exclusive map[string]int `json:"exclusive" yaml:"exclusive"`
}

// CategoryDetail is the drill-down view of one category.
type CategoryDetail struct {
	DisplayName string               `json:"display_name" yaml:"display_name"`
	Stats       CategoryStats        `json:"stats"        yaml:"stats"`
	APIs        []string             `json:"apis"         yaml:"apis"`
	APIDetails  []APIInfo            `json:"api_details"  yaml:"api_details"`
	Missing     map[string][]APIInfo `json:"missing"      yaml:"missing"`
	Exclusive   map[string][]APIInfo `json:"exclusive"    yaml:"exclusive"`
}

// PlatformStats is the global summary of one platform.
type PlatformStats struct {
	SupportedCount  int `json:"supported_count"  yaml:"supported_count"`
	CoveragePercent int `json:"coverage_percent" yaml:"coverage_percent"`
	ExclusiveCount  int `json:"exclusive_count"  yaml:"exclusive_count"`
}

// Feature is the flat, addressable record of one compatibility leaf.
type Feature struct {
	ID         string                      `json:"id"                    yaml:"id"`
	Query      string                      `json:"query"                 yaml:"query"`
	Name       string                      `json:"name"                  yaml:"name"`
	Category   string                      `json:"category"              yaml:"category"`
	SourceFile string                      `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Support    map[string]SupportStatement `json:"support"               yaml:"support"`
}

// PlatformPoint is a platform's coverage at one timeline point.
type PlatformPoint struct {
	Supported int `json:"supported" yaml:"supported"`
	Coverage  int `json:"coverage"  yaml:"coverage"`
}

// TimelinePoint is the coverage state at one released version.
type TimelinePoint struct {
	Version     string                   `json:"version"                yaml:"version"`
	ReleaseDate string                   `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Platforms   map[string]PlatformPoint `json:"platforms"              yaml:"platforms"`
}

// VersionEntry is one entry of the version history.
type VersionEntry struct {
	Version     string `json:"version"                yaml:"version"`
	ReleaseDate string `json:"release_date,omitempty" yaml:"release_date,omitempty"`
}

// Summary is the top-level roll-up of the report.
type Summary struct {
	TotalAPIs  int                      `json:"total_apis"  yaml:"total_apis"`
	ByCategory map[string]CategoryStats `json:"by_category" yaml:"by_category"`
	ByPlatform map[string]PlatformStats `json:"by_platform" yaml:"by_platform"`
}

// APIStats is the generated report.
type APIStats struct {
	GeneratedAt string                    `json:"generated_at" yaml:"generated_at"`
	Summary     Summary                   `json:"summary"      yaml:"summary"`
	Categories  map[string]CategoryDetail `json:"categories"   yaml:"categories"`
	RecentAPIs  []RecentAPI               `json:"recent_apis"  yaml:"recent_apis"`
	Features    []Feature                 `json:"features"     yaml:"features"`
	Timeline    []TimelinePoint           `json:"timeline"     yaml:"timeline"`
}

// FeatureSupporters returns the platforms among candidates that support f.
func FeatureSupporters(f Feature, candidates []string) []string {
	var out []string

	for _, p := range candidates {
		if stmt, ok := f.Support[p]; ok && stmt.VersionAdded.IsSupported() {
			out = append(out, p)
		}
	}

	return out
}
