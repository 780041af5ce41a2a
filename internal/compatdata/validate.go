package compatdata

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

//go:embed schema/compat.schema.json
var schemaFS embed.FS

const (
	embeddedSchema = "schema/compat.schema.json"
	complianceMax  = 100
)

// Issue is one schema violation.
type Issue struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// FileReport is the validation outcome of one file.
type FileReport struct {
	Path       string  `json:"path"`
	Valid      bool    `json:"valid"`
	Compliance int     `json:"compliance"`
	Issues     []Issue `json:"issues,omitempty"`
	// ParseError is set when the file is not JSON at all.
	ParseError string `json:"parse_error,omitempty"`
}

// ValidationReport aggregates the reports of a validation run.
type ValidationReport struct {
	Files   []FileReport `json:"files"`
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`
}

// OK reports whether every file passed.
func (r ValidationReport) OK() bool { return r.Invalid == 0 }

// Validator checks compat data files against a JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the schema at schemaPath, or the embedded compat
// data schema when schemaPath is empty.
func NewValidator(schemaPath string) (*Validator, error) {
	var (
		raw []byte
		err error
	)

	if schemaPath == "" {
		raw, err = schemaFS.ReadFile(embeddedSchema)
	} else {
		raw, err = os.ReadFile(schemaPath)
	}

	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateBytes validates one document. Invalid JSON is reported in the
// FileReport, not as an error.
func (v *Validator) ValidateBytes(name string, data []byte) (FileReport, error) {
	report := FileReport{Path: name}

	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decodeErr := dec.Decode(&doc)
	if decodeErr != nil {
		report.ParseError = decodeErr.Error()

		return report, nil
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return report, fmt.Errorf("validate %s: %w", name, err)
	}

	if result.Valid() {
		report.Valid = true
		report.Compliance = complianceMax

		return report, nil
	}

	for _, verr := range result.Errors() {
		report.Issues = append(report.Issues, Issue{Field: verr.Field(), Description: verr.Description()})
	}

	report.Compliance = compliance(countObjects(doc), len(report.Issues))

	return report, nil
}

// Validate checks every JSON file of the given categories. Missing
// category directories are skipped.
func (l *Loader) Validate(ctx context.Context, v *Validator, categories []Category) (ValidationReport, error) {
	ctx, span := l.tracer.Start(ctx, "compatdata.validate")
	defer span.End()

	var report ValidationReport

	for _, cat := range categories {
		files, err := l.categoryFiles(cat)
		if err != nil {
			return report, err
		}

		for _, file := range files {
			fr, fileErr := l.validateFile(ctx, v, file)
			if fileErr != nil {
				return report, fileErr
			}

			if fr.Valid {
				report.Valid++
			} else {
				report.Invalid++
			}

			report.Files = append(report.Files, fr)
		}
	}

	span.SetAttributes(
		attribute.Int("compatdata.valid", report.Valid),
		attribute.Int("compatdata.invalid", report.Invalid),
	)

	return report, nil
}

func (l *Loader) categoryFiles(cat Category) ([]string, error) {
	files, err := l.Files(filepath.Join(l.root, filepath.FromSlash(cat.Path)))
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("category directory not found", "category", cat.Path)

		return nil, nil
	}

	return files, err
}

func (l *Loader) validateFile(ctx context.Context, v *Validator, file string) (FileReport, error) {
	_, span := l.tracer.Start(ctx, observability.SpanValidateFile)
	defer span.End()

	rel, err := l.relative(file)
	if err != nil {
		return FileReport{}, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return FileReport{}, fmt.Errorf("read %s: %w", rel, err)
	}

	return v.ValidateBytes(rel, data)
}

// compliance is the share of objects without a reported issue.
func compliance(objects, issues int) int {
	if objects == 0 {
		return 0
	}

	return min(max((objects-issues)*complianceMax/objects, 0), complianceMax)
}

func countObjects(data any) int {
	switch typed := data.(type) {
	case map[string]any:
		count := 1

		for _, child := range typed {
			count += countObjects(child)
		}

		return count
	case []any:
		count := 0

		for _, item := range typed {
			count += countObjects(item)
		}

		return count
	default:
		return 0
	}
}
