package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/internal/mcp"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

func testReport() *compat.APIStats {
	view := compat.APIInfo{
		Path: "elements/view/overflow",
		Name: "overflow",
		Support: map[string]compat.VersionValue{
			"android": compat.Version("2.0"),
			"ios":     compat.Version("2.0"),
		},
	}

	return &compat.APIStats{
		GeneratedAt: "2026-03-01T10:00:00.000Z",
		Summary: compat.Summary{
			TotalAPIs: 2,
			ByPlatform: map[string]compat.PlatformStats{
				"android": {SupportedCount: 2, CoveragePercent: 100},
				"ios":     {SupportedCount: 2, CoveragePercent: 100},
				"harmony": {SupportedCount: 1, CoveragePercent: 50},
			},
		},
		Categories: map[string]compat.CategoryDetail{
			"elements": {
				DisplayName: "Elements",
				Stats: compat.CategoryStats{
					Total:    2,
					Coverage: map[string]int{"android": 100, "ios": 100, "harmony": 50},
				},
				Missing: map[string][]compat.APIInfo{"harmony": {view}},
			},
		},
		Features: []compat.Feature{
			{
				ID: "0", Query: "elements/view/overflow", Name: "overflow", Category: "elements",
				Support: map[string]compat.SupportStatement{
					"android": {VersionAdded: compat.Version("2.0")},
				},
			},
			{
				ID: "1", Query: "elements/text/text-maxline", Name: "text-maxline", Category: "elements",
				Support: map[string]compat.SupportStatement{
					"harmony": {VersionAdded: compat.Version("3.2")},
				},
			},
		},
	}
}

func writeReport(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api-stats.json")

	_, err := artifact.Write(path, testReport(), artifact.Options{Indent: true})
	require.NoError(t, err)

	return path
}

func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()

	go func() {
		_ = srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = session.Close() })

	return session
}

func callText(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text, result.IsError
}

func TestNewServer_ToolsRegistered(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{})
	require.NoError(t, err)

	assert.Equal(t, []string{mcp.ToolNameLookup, mcp.ToolNameMissing, mcp.ToolNameSummary}, srv.ListToolNames())
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{})
	require.NoError(t, err)

	session := connect(t, srv)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameSummary, mcp.ToolNameLookup, mcp.ToolNameMissing}, names)
}

func TestServer_Run_CancelledContext(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, srv.Run(ctx))
}

func TestSummary_DefaultReport(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{ReportPath: writeReport(t)})
	require.NoError(t, err)

	text, isErr := callText(t, connect(t, srv), mcp.ToolNameSummary, map[string]any{})
	require.False(t, isErr, text)

	var out mcp.SummaryOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))

	assert.Equal(t, 2, out.TotalAPIs)
	assert.Equal(t, "2026-03-01T10:00:00.000Z", out.GeneratedAt)
	assert.Equal(t, 50, out.Platforms["harmony"].CoveragePercent)
	assert.Equal(t, "Elements", out.Categories["elements"].DisplayName)
}

func TestSummary_NoReport(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{})
	require.NoError(t, err)

	text, isErr := callText(t, connect(t, srv), mcp.ToolNameSummary, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "report_path is required")
}

func TestLookup(t *testing.T) {
	t.Parallel()

	path := writeReport(t)

	srv, err := mcp.NewServer(mcp.ServerDeps{})
	require.NoError(t, err)

	session := connect(t, srv)

	text, isErr := callText(t, session, mcp.ToolNameLookup, map[string]any{"report_path": path, "query": "MAXLINE"})
	require.False(t, isErr, text)

	var out mcp.LookupOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "elements/text/text-maxline", out.Matches[0].Query)
	assert.False(t, out.Truncated)

	text, isErr = callText(t, session, mcp.ToolNameLookup, map[string]any{"report_path": path, "query": "elements", "limit": 1})
	require.False(t, isErr, text)
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Len(t, out.Matches, 1)
	assert.True(t, out.Truncated)
}

func TestLookup_Errors(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{ReportPath: writeReport(t)})
	require.NoError(t, err)

	session := connect(t, srv)

	text, isErr := callText(t, session, mcp.ToolNameLookup, map[string]any{"query": "  "})
	assert.True(t, isErr)
	assert.Contains(t, text, mcp.ErrEmptyQuery.Error())

	text, isErr = callText(t, session, mcp.ToolNameLookup, map[string]any{"query": "view", "category": "lynx-api"})
	assert.True(t, isErr)
	assert.Contains(t, text, "lynx-api")
}

func TestMissing(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{ReportPath: writeReport(t)})
	require.NoError(t, err)

	session := connect(t, srv)

	text, isErr := callText(t, session, mcp.ToolNameMissing, map[string]any{"platform": "harmony"})
	require.False(t, isErr, text)

	var out mcp.MissingOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.APIs, 1)
	assert.Equal(t, "elements", out.APIs[0].Category)
	assert.Equal(t, "elements/view/overflow", out.APIs[0].Path)

	text, isErr = callText(t, session, mcp.ToolNameMissing, map[string]any{"platform": "android"})
	require.False(t, isErr, text)
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Zero(t, out.Total)
	assert.Empty(t, out.APIs)
}

func TestMissing_Errors(t *testing.T) {
	t.Parallel()

	srv, err := mcp.NewServer(mcp.ServerDeps{ReportPath: writeReport(t)})
	require.NoError(t, err)

	session := connect(t, srv)

	_, isErr := callText(t, session, mcp.ToolNameMissing, map[string]any{"platform": ""})
	assert.True(t, isErr)

	text, isErr := callText(t, session, mcp.ToolNameMissing, map[string]any{"platform": "symbian"})
	assert.True(t, isErr)
	assert.Contains(t, text, "symbian")

	text, isErr = callText(t, session, mcp.ToolNameMissing, map[string]any{"platform": "harmony", "category": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "nope")
}

func TestServer_RecordsToolMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	red, err := observability.NewREDMetrics(provider.Meter("test"))
	require.NoError(t, err)

	srv, err := mcp.NewServer(mcp.ServerDeps{Metrics: red, ReportPath: writeReport(t)})
	require.NoError(t, err)

	_, isErr := callText(t, connect(t, srv), mcp.ToolNameSummary, map[string]any{})
	require.False(t, isErr)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := false

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "compatstats.requests.total" {
				found = true
			}
		}
	}

	assert.True(t, found)
}

func TestReportCache_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	cache, err := mcp.NewReportCache(0)
	require.NoError(t, err)

	path := writeReport(t)

	first, err := cache.Load(path)
	require.NoError(t, err)

	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), cache.Hits())
	assert.Equal(t, int64(1), cache.Misses())

	updated := testReport()
	updated.Summary.TotalAPIs = 7

	_, err = artifact.Write(path, updated, artifact.Options{})
	require.NoError(t, err)

	require.NoError(t, touch(path, time.Now().Add(time.Minute)))

	third, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, third.Summary.TotalAPIs)
	assert.Equal(t, int64(2), cache.Misses())
}

func TestReportCache_Errors(t *testing.T) {
	t.Parallel()

	cache, err := mcp.NewReportCache(2)
	require.NoError(t, err)

	_, err = cache.Load("")
	require.ErrorIs(t, err, mcp.ErrNoReport)

	_, err = cache.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Zero(t, cache.Len())
}

func touch(path string, at time.Time) error {
	return os.Chtimes(path, at, at)
}
