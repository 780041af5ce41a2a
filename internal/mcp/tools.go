package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

// Tool names.
const (
	ToolNameSummary = "compat_summary"
	ToolNameLookup  = "compat_lookup"
	ToolNameMissing = "compat_missing"
)

// Result limits.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

const (
	summaryToolDescription = "Summarize a generated compat report: total shared APIs, " +
		"per-platform supported and exclusive counts and per-category coverage."

	lookupToolDescription = "Find APIs in a compat report by query path or name substring " +
		"and return their per-platform version_added values."

	missingToolDescription = "List shared APIs a platform does not support yet, " +
		"optionally restricted to one category."
)

// Sentinel tool errors.
var (
	// ErrEmptyQuery indicates the query parameter is empty.
	ErrEmptyQuery = errors.New("query parameter is required and must not be empty")
	// ErrEmptyPlatform indicates the platform parameter is empty.
	ErrEmptyPlatform = errors.New("platform parameter is required and must not be empty")
	// ErrUnknownPlatform indicates the platform is not part of the report.
	ErrUnknownPlatform = errors.New("platform is not part of the report")
	// ErrUnknownCategory indicates the category is not part of the report.
	ErrUnknownCategory = errors.New("category is not part of the report")
)

// SummaryInput is the input schema for the compat_summary tool.
type SummaryInput struct {
	ReportPath string `json:"report_path,omitempty" jsonschema:"path to an api-stats report (default: the server's report)"`
}

// LookupInput is the input schema for the compat_lookup tool.
type LookupInput struct {
	Category   string `json:"category,omitempty"    jsonschema:"optional category key to search in (e.g. elements)"`
	Limit      int    `json:"limit,omitempty"       jsonschema:"maximum number of matches (default: 50)"`
	Query      string `json:"query"                 jsonschema:"case-insensitive substring of the API query path or name"`
	ReportPath string `json:"report_path,omitempty" jsonschema:"path to an api-stats report (default: the server's report)"`
}

// MissingInput is the input schema for the compat_missing tool.
type MissingInput struct {
	Category   string `json:"category,omitempty"    jsonschema:"optional category key (default: all categories)"`
	Limit      int    `json:"limit,omitempty"       jsonschema:"maximum number of APIs (default: 50)"`
	Platform   string `json:"platform"              jsonschema:"platform identifier (e.g. harmony or clay)"`
	ReportPath string `json:"report_path,omitempty" jsonschema:"path to an api-stats report (default: the server's report)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// CategorySummary is the compact view of one category.
type CategorySummary struct {
	DisplayName string         `json:"display_name"`
	Total       int            `json:"total"`
	Coverage    map[string]int `json:"coverage"`
}

// SummaryOutput is the payload of compat_summary.
type SummaryOutput struct {
	GeneratedAt string                          `json:"generated_at"`
	TotalAPIs   int                             `json:"total_apis"`
	Platforms   map[string]compat.PlatformStats `json:"platforms"`
	Categories  map[string]CategorySummary      `json:"categories"`
}

// LookupOutput is the payload of compat_lookup.
type LookupOutput struct {
	Matches   []compat.Feature `json:"matches"`
	Truncated bool             `json:"truncated"`
}

// MissingAPI is a shared API a platform lacks.
type MissingAPI struct {
	Category string `json:"category"`
	compat.APIInfo
}

// MissingOutput is the payload of compat_missing.
type MissingOutput struct {
	Platform  string       `json:"platform"`
	Total     int          `json:"total"`
	APIs      []MissingAPI `json:"apis"`
	Truncated bool         `json:"truncated"`
}

func (s *Server) loadReport(path string) (*compat.APIStats, error) {
	if path == "" {
		path = s.reportPath
	}

	return s.reports.Load(path)
}

func (s *Server) handleSummary(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	stats, err := s.loadReport(input.ReportPath)
	if err != nil {
		return errorResult(err)
	}

	out := SummaryOutput{
		GeneratedAt: stats.GeneratedAt,
		TotalAPIs:   stats.Summary.TotalAPIs,
		Platforms:   stats.Summary.ByPlatform,
		Categories:  make(map[string]CategorySummary, len(stats.Categories)),
	}

	for key, detail := range stats.Categories {
		out.Categories[key] = CategorySummary{
			DisplayName: detail.DisplayName,
			Total:       detail.Stats.Total,
			Coverage:    detail.Stats.Coverage,
		}
	}

	return jsonResult(out)
}

func (s *Server) handleLookup(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input LookupInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	needle := strings.ToLower(strings.TrimSpace(input.Query))
	if needle == "" {
		return errorResult(ErrEmptyQuery)
	}

	stats, err := s.loadReport(input.ReportPath)
	if err != nil {
		return errorResult(err)
	}

	if input.Category != "" {
		if _, ok := stats.Categories[input.Category]; !ok {
			return errorResult(fmt.Errorf("%w: %s", ErrUnknownCategory, input.Category))
		}
	}

	limit := clampLimit(input.Limit)
	out := LookupOutput{Matches: []compat.Feature{}}

	for _, f := range stats.Features {
		if input.Category != "" && f.Category != input.Category {
			continue
		}

		if !strings.Contains(strings.ToLower(f.Query), needle) && !strings.Contains(strings.ToLower(f.Name), needle) {
			continue
		}

		if len(out.Matches) == limit {
			out.Truncated = true

			break
		}

		out.Matches = append(out.Matches, f)
	}

	return jsonResult(out)
}

func (s *Server) handleMissing(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input MissingInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Platform == "" {
		return errorResult(ErrEmptyPlatform)
	}

	stats, err := s.loadReport(input.ReportPath)
	if err != nil {
		return errorResult(err)
	}

	if _, ok := stats.Summary.ByPlatform[input.Platform]; !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownPlatform, input.Platform))
	}

	keys := make([]string, 0, len(stats.Categories))

	for key := range stats.Categories {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	if input.Category != "" {
		if !slices.Contains(keys, input.Category) {
			return errorResult(fmt.Errorf("%w: %s", ErrUnknownCategory, input.Category))
		}

		keys = []string{input.Category}
	}

	limit := clampLimit(input.Limit)
	out := MissingOutput{Platform: input.Platform, APIs: []MissingAPI{}}

	for _, key := range keys {
		for _, api := range stats.Categories[key].Missing[input.Platform] {
			out.Total++

			if len(out.APIs) < limit {
				out.APIs = append(out.APIs, MissingAPI{Category: key, APIInfo: api})
			}
		}
	}

	out.Truncated = out.Total > len(out.APIs)

	return jsonResult(out)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
