// Package reportdiff compares two generated reports.
package reportdiff

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

// PlatformDelta is the coverage movement of one platform.
type PlatformDelta struct {
	Platform     string `json:"platform"`
	OldSupported int    `json:"old_supported"`
	NewSupported int    `json:"new_supported"`
	OldCoverage  int    `json:"old_coverage"`
	NewCoverage  int    `json:"new_coverage"`
}

// Delta is the coverage change in percentage points.
func (d PlatformDelta) Delta() int { return d.NewCoverage - d.OldCoverage }

// FeatureRef names a feature independently of its positional id.
type FeatureRef struct {
	Category string `json:"category"`
	Query    string `json:"query"`
}

func (r FeatureRef) String() string { return r.Category + ":" + r.Query }

// SupportChange is a changed version_added of one feature on one platform.
type SupportChange struct {
	Feature  FeatureRef          `json:"feature"`
	Platform string              `json:"platform"`
	Old      compat.VersionValue `json:"old"`
	New      compat.VersionValue `json:"new"`
}

// Diff is the difference between two reports.
type Diff struct {
	OldTotal  int             `json:"old_total"`
	NewTotal  int             `json:"new_total"`
	Platforms []PlatformDelta `json:"platforms"`
	Added     []FeatureRef    `json:"added"`
	Removed   []FeatureRef    `json:"removed"`
	Changed   []SupportChange `json:"changed"`
}

// Empty reports whether nothing but generated_at differs in the compared data.
func (d Diff) Empty() bool {
	if d.OldTotal != d.NewTotal || len(d.Added)+len(d.Removed)+len(d.Changed) > 0 {
		return false
	}

	return !slices.ContainsFunc(d.Platforms, func(p PlatformDelta) bool {
		return p.OldSupported != p.NewSupported || p.OldCoverage != p.NewCoverage
	})
}

// Compare diffs two reports. Platforms are listed in the given order first,
// then any other platform found in either report, sorted.
func Compare(older, newer *compat.APIStats, platforms []string) Diff {
	d := Diff{OldTotal: older.Summary.TotalAPIs, NewTotal: newer.Summary.TotalAPIs}

	for _, p := range platformOrder(older, newer, platforms) {
		o, n := older.Summary.ByPlatform[p], newer.Summary.ByPlatform[p]
		d.Platforms = append(d.Platforms, PlatformDelta{
			Platform:     p,
			OldSupported: o.SupportedCount,
			NewSupported: n.SupportedCount,
			OldCoverage:  o.CoveragePercent,
			NewCoverage:  n.CoveragePercent,
		})
	}

	oldIdx := index(older.Features)
	newIdx := index(newer.Features)

	for _, f := range newer.Features {
		ref := refOf(f)

		prev, ok := oldIdx[ref]
		if !ok {
			d.Added = append(d.Added, ref)

			continue
		}

		d.Changed = append(d.Changed, supportChanges(ref, prev, f)...)
	}

	for _, f := range older.Features {
		if _, ok := newIdx[refOf(f)]; !ok {
			d.Removed = append(d.Removed, refOf(f))
		}
	}

	return d
}

func refOf(f compat.Feature) FeatureRef { return FeatureRef{Category: f.Category, Query: f.Query} }

func index(features []compat.Feature) map[FeatureRef]compat.Feature {
	out := make(map[FeatureRef]compat.Feature, len(features))
	for _, f := range features {
		out[refOf(f)] = f
	}

	return out
}

func supportChanges(ref FeatureRef, older, newer compat.Feature) []SupportChange {
	keys := make([]string, 0, len(older.Support)+len(newer.Support))
	for p := range older.Support {
		keys = append(keys, p)
	}

	for p := range newer.Support {
		keys = append(keys, p)
	}

	slices.Sort(keys)
	keys = slices.Compact(keys)

	var out []SupportChange

	for _, p := range keys {
		o, n := older.Support[p].VersionAdded, newer.Support[p].VersionAdded
		if o.Normalize() != n.Normalize() {
			out = append(out, SupportChange{Feature: ref, Platform: p, Old: o, New: n})
		}
	}

	return out
}

func platformOrder(older, newer *compat.APIStats, preferred []string) []string {
	out := slices.Clone(preferred)

	var extra []string

	for _, m := range []map[string]compat.PlatformStats{older.Summary.ByPlatform, newer.Summary.ByPlatform} {
		for p := range m {
			if !slices.Contains(out, p) && !slices.Contains(extra, p) {
				extra = append(extra, p)
			}
		}
	}

	slices.Sort(extra)

	return append(out, extra...)
}

// Write prints the diff as plain text.
func (d Diff) Write(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Shared APIs: %d -> %d (%+d)\n", d.OldTotal, d.NewTotal, d.NewTotal-d.OldTotal)

	sb.WriteString("\nCoverage:\n")

	for _, p := range d.Platforms {
		fmt.Fprintf(&sb, "  %-14s %3d%% -> %3d%% (%+d)  supported %d -> %d\n",
			p.Platform, p.OldCoverage, p.NewCoverage, p.Delta(), p.OldSupported, p.NewSupported)
	}

	writeRefs(&sb, "Added features", d.Added)
	writeRefs(&sb, "Removed features", d.Removed)

	if len(d.Changed) > 0 {
		fmt.Fprintf(&sb, "\nChanged support (%d):\n", len(d.Changed))

		for _, c := range d.Changed {
			fmt.Fprintf(&sb, "  %s [%s]: %s -> %s\n", c.Feature, c.Platform, c.Old, c.New)
		}
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}

func writeRefs(sb *strings.Builder, title string, refs []FeatureRef) {
	if len(refs) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n%s (%d):\n", title, len(refs))

	for _, r := range refs {
		fmt.Fprintf(sb, "  %s\n", r)
	}
}

// UnifiedLines diffs two texts line by line and prefixes each line with
// "+", "-" or " ".
func UnifiedLines(oldText, newText string) string {
	dmp := diffmatchpatch.New()

	src, dst, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	var sb strings.Builder

	for _, chunk := range diffs {
		prefix := " "

		switch chunk.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.SplitAfter(chunk.Text, "\n") {
			if line == "" {
				continue
			}

			sb.WriteString(prefix + line)

			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
