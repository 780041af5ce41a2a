package compatdata

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// DefaultVersionFile holds the release history.
const DefaultVersionFile = "version.json"

// DefaultExcludeDirs returns the top-level directories that never hold
// compat data.
func DefaultExcludeDirs() []string {
	return []string{".vscode", "platforms", "schemas", "scripts", "test", "types", "node_modules"}
}

// Discover lists the top-level compat data directories: every directory
// not excluded and not starting with a dot, sorted by name.
func (l *Loader) Discover() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read data root: %w", err)
	}

	var dirs []string

	for _, entry := range entries {
		name := entry.Name()

		if !entry.IsDir() || strings.HasPrefix(name, ".") || slices.Contains(l.exclude, name) {
			continue
		}

		dirs = append(dirs, name)
	}

	return dirs, nil
}

// Unconfigured returns discovered directories that no category covers,
// either directly or as a parent of a nested category path.
func (l *Loader) Unconfigured(categories []Category) ([]string, error) {
	dirs, err := l.Discover()
	if err != nil {
		return nil, err
	}

	var out []string

	for _, dir := range dirs {
		covered := slices.ContainsFunc(categories, func(c Category) bool {
			return c.Path == dir || strings.HasPrefix(c.Path, dir+"/")
		})

		if !covered {
			out = append(out, dir)
		}
	}

	return out, nil
}
