// Package compat aggregates per-feature compatibility data into the API
// statistics report: support resolution, tree walking, per-category coverage,
// the clay aggregate platform and the historical coverage timeline.
package compat

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// VersionKind distinguishes the shapes a version_added value can take.
type VersionKind uint8

const (
	// VersionUnknown is a null or absent version_added.
	VersionUnknown VersionKind = iota
	// VersionUnsupported is an explicit false.
	VersionUnsupported
	// VersionAlways is true: supported, version unknown.
	VersionAlways
	// VersionString is a concrete version such as "3.4".
	VersionString
)

// versionMajorWeight folds major and minor into a single ordering key.
const versionMajorWeight = 1000

// ErrInvalidVersionValue is returned when version_added is neither a bool,
// a string nor null.
var ErrInvalidVersionValue = errors.New("version_added must be a bool, a string or null")

// VersionValue is a version_added value. The zero value is VersionUnknown.
type VersionValue struct {
	kind    VersionKind
	version string
}

// Unknown returns the null version value.
func Unknown() VersionValue { return VersionValue{} }

// Unsupported returns the false version value.
func Unsupported() VersionValue { return VersionValue{kind: VersionUnsupported} }

// Always returns the true version value.
func Always() VersionValue { return VersionValue{kind: VersionAlways} }

// Version returns a concrete version value.
func Version(v string) VersionValue { return VersionValue{kind: VersionString, version: v} }

// Bool converts a support flag to Always or Unsupported.
func Bool(supported bool) VersionValue {
	if supported {
		return Always()
	}

	return Unsupported()
}

// Kind returns the shape of the value.
func (v VersionValue) Kind() VersionKind { return v.kind }

// Version returns the version string and whether the value is a concrete version.
func (v VersionValue) Version() (string, bool) {
	return v.version, v.kind == VersionString
}

// IsSupported reports whether the value declares support: true, or a
// non-empty version string. This is the only support predicate used by the
// aggregator.
func (v VersionValue) IsSupported() bool {
	switch v.kind {
	case VersionAlways:
		return true
	case VersionString:
		return v.version != ""
	default:
		return false
	}
}

// Normalize maps every unsupported shape (null, false, empty string) to false
// and keeps true and concrete versions as they are.
func (v VersionValue) Normalize() VersionValue {
	if !v.IsSupported() {
		return Unsupported()
	}

	return v
}

// String renders the value the way it appears in JSON, without quotes.
func (v VersionValue) String() string {
	switch v.kind {
	case VersionUnsupported:
		return "false"
	case VersionAlways:
		return "true"
	case VersionString:
		return v.version
	default:
		return "null"
	}
}

// MarshalJSON encodes the value as null, a bool or a string.
func (v VersionValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case VersionUnsupported:
		return []byte("false"), nil
	case VersionAlways:
		return []byte("true"), nil
	case VersionString:
		return json.Marshal(v.version)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, a bool, a string or a bare number.
func (v *VersionValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*v = Unknown()
	case bytes.Equal(trimmed, []byte("true")):
		*v = Always()
	case bytes.Equal(trimmed, []byte("false")):
		*v = Unsupported()
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string

		err := json.Unmarshal(trimmed, &s)
		if err != nil {
			return fmt.Errorf("decode version_added: %w", err)
		}

		*v = Version(s)
	default:
		var num json.Number

		err := json.Unmarshal(trimmed, &num)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidVersionValue, trimmed)
		}

		*v = Version(num.String())
	}

	return nil
}

// MarshalYAML renders the value as a YAML scalar.
func (v VersionValue) MarshalYAML() (any, error) {
	switch v.kind {
	case VersionUnsupported:
		return false, nil
	case VersionAlways:
		return true, nil
	case VersionString:
		return v.version, nil
	default:
		return nil, nil
	}
}

// ParseVersionKey folds "major.minor[.patch]" into major*1000+minor.
// A missing or empty minor counts as zero. Returns false when either
// component is not a number.
func ParseVersionKey(version string) (int, bool) {
	parts := strings.Split(version, ".")

	major, ok := parseComponent(parts[0])
	if !ok {
		return 0, false
	}

	minor := 0

	if len(parts) > 1 {
		minor, ok = parseComponent(parts[1])
		if !ok {
			return 0, false
		}
	}

	return major*versionMajorWeight + minor, true
}

func parseComponent(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

// AtOrBefore reports whether v was available at target. True is always
// available; null, false and unparseable versions never are.
func AtOrBefore(v VersionValue, target string) bool {
	switch v.kind {
	case VersionAlways:
		return true
	case VersionString:
		if v.version == "" {
			return false
		}

		added, ok := ParseVersionKey(v.version)
		if !ok {
			return false
		}

		cutoff, ok := ParseVersionKey(target)
		if !ok {
			return false
		}

		return added <= cutoff
	default:
		return false
	}
}

// Earliest returns the earliest supporting value. Concrete versions win over
// a bare true; with no supporting value it returns Unsupported.
func Earliest(values []VersionValue) VersionValue {
	var (
		versions  []string
		supported bool
	)

	for _, v := range values {
		if !v.IsSupported() {
			continue
		}

		supported = true

		if s, ok := v.Version(); ok {
			versions = append(versions, s)
		}
	}

	if !supported {
		return Unsupported()
	}

	if len(versions) == 0 {
		return Always()
	}

	slices.SortStableFunc(versions, compareVersions)

	return Version(versions[0])
}

// compareVersions orders by version key; unparseable versions sort last.
func compareVersions(a, b string) int {
	ka, okA := ParseVersionKey(a)
	kb, okB := ParseVersionKey(b)

	switch {
	case okA && okB:
		return cmp.Compare(ka, kb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// IsRecent reports whether v is a concrete version starting with one of the
// given prefixes ("3.4" matches "3.4.1").
func IsRecent(v VersionValue, prefixes []string) bool {
	s, ok := v.Version()
	if !ok {
		return false
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}
