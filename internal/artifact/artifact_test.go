package artifact_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

func sampleStats() *compat.APIStats {
	return &compat.APIStats{
		GeneratedAt: "2025-01-02T03:04:05.000Z",
		Summary: compat.Summary{
			TotalAPIs:  1,
			ByCategory: map[string]compat.CategoryStats{},
			ByPlatform: map[string]compat.PlatformStats{
				"android": {SupportedCount: 1, CoveragePercent: 100},
			},
		},
		Categories: map[string]compat.CategoryDetail{},
		RecentAPIs: []compat.RecentAPI{},
		Features: []compat.Feature{{
			ID:       "feature-0",
			Name:     "view",
			Category: "elements",
			Query:    "elements.view",
			Support: map[string]compat.SupportStatement{
				"android": {VersionAdded: compat.Version("1.0")},
			},
		}},
		Timeline: []compat.TimelinePoint{},
	}
}

func TestWrite_IndentedRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "api-stats.json")

	res, err := artifact.Write(path, sampleStats(), artifact.Options{Indent: true})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, path, res.Files[0].Path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"summary\"")
	assert.Equal(t, int64(len(raw)), res.Files[0].Size)

	back, err := artifact.Read(path)
	require.NoError(t, err)
	assert.Equal(t, sampleStats(), back)

	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite_CompactAndCompressed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "api-stats.json")

	res, err := artifact.Write(path, sampleStats(), artifact.Options{Compress: true})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, path+artifact.CompressedExt, res.Files[1].Path)
	assert.Equal(t, []string{path, path + artifact.CompressedExt}, res.Paths())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "\n"))

	back, err := artifact.Read(path + artifact.CompressedExt)
	require.NoError(t, err)
	assert.Equal(t, "feature-0", back.Features[0].ID)
	assert.Equal(t, compat.Version("1.0"), back.Features[0].Support["android"].VersionAdded)
}

func TestRead_Missing(t *testing.T) {
	t.Parallel()

	_, err := artifact.Read(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestEncode_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	stats := sampleStats()
	stats.RecentAPIs = []compat.RecentAPI{{Path: "elements/view", DocURL: "/api/view?a=<1>&b=2"}}

	var buf bytes.Buffer

	require.NoError(t, artifact.Encode(&buf, stats, false))
	assert.Contains(t, buf.String(), "/api/view?a=<1>&b=2")
}

func TestEncodeYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, artifact.EncodeYAML(&buf, sampleStats()))

	out := buf.String()
	assert.Contains(t, out, "generated_at:")
	assert.Contains(t, out, "2025-01-02T03:04:05.000Z")
	assert.Contains(t, out, "total_apis: 1")
	assert.Contains(t, out, "version_added: \"1.0\"")
}

func TestResult_String(t *testing.T) {
	t.Parallel()

	res := artifact.Result{Files: []artifact.File{{Path: "a.json", Size: 2048}}}
	assert.Equal(t, "a.json (2.0 KiB)", res.String())
}
