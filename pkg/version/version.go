// Package version carries the build identity of the compatstats binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at link time via -ldflags "-X".
var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the Git hash the binary was built from.
	Commit = "<unknown>"
	// Date is the build timestamp.
	Date = "<unknown>"
)

// Info is the build identity in a serializable form.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build identity, filling the commit from the embedded VCS
// stamp when it was not set at link time.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}

	if info.Commit != "<unknown>" {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if info.Date == "<unknown>" {
				info.Date = s.Value
			}
		}
	}

	return info
}

// String formats the build identity on one line.
func (i Info) String() string {
	return fmt.Sprintf("compatstats %s (commit %s, built %s, %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}
