// Package compatdata reads a compat data tree from disk: category
// discovery, document loading, version history and schema validation.
package compatdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
)

// TracerName is the instrumentation scope of the loader.
const TracerName = "compatstats.compatdata"

const jsonExt = ".json"

// ErrNotDirectory is returned when the data root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Category names one category directory and its presentation.
type Category struct {
	Path        string
	DisplayName string
	DocPrefix   string
}

// Loader reads compat data below a root directory.
type Loader struct {
	root        string
	exclude     []string
	versionFile string
	logger      *slog.Logger
	tracer      trace.Tracer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExcludeDirs replaces the top-level directories skipped by Discover.
func WithExcludeDirs(dirs []string) LoaderOption {
	return func(l *Loader) { l.exclude = slices.Clone(dirs) }
}

// WithVersionFile sets the history file name relative to the root.
func WithVersionFile(name string) LoaderOption {
	return func(l *Loader) { l.versionFile = name }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) LoaderOption {
	return func(l *Loader) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

// NewLoader creates a Loader rooted at root.
func NewLoader(root string, opts ...LoaderOption) *Loader {
	l := &Loader{
		root:        root,
		exclude:     DefaultExcludeDirs(),
		versionFile: DefaultVersionFile,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer(TracerName),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Root returns the data root.
func (l *Loader) Root() string { return l.root }

// Load reads every category and the version history.
func (l *Loader) Load(ctx context.Context, categories []Category) (compat.Input, error) {
	ctx, span := l.tracer.Start(ctx, "compatdata.load",
		trace.WithAttributes(attribute.Int("compatdata.categories", len(categories))))
	defer span.End()

	inputs := make([]compat.CategoryInput, 0, len(categories))

	for _, cat := range categories {
		in, err := l.LoadCategory(ctx, cat)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")

			return compat.Input{}, err
		}

		inputs = append(inputs, in)
	}

	history, err := l.LoadHistory()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "history failed")

		return compat.Input{}, err
	}

	return compat.Input{Categories: inputs, History: history}, nil
}

// LoadCategory parses every JSON file below the category directory. A
// missing directory yields a Missing input and a warning.
func (l *Loader) LoadCategory(ctx context.Context, cat Category) (compat.CategoryInput, error) {
	ctx, span := l.tracer.Start(ctx, "compatdata.load_category",
		trace.WithAttributes(attribute.String("compatdata.category", cat.Path)))
	defer span.End()

	in := compat.CategoryInput{Key: cat.Path, DisplayName: cat.DisplayName, DocPrefix: cat.DocPrefix}

	dir := filepath.Join(l.root, filepath.FromSlash(cat.Path))

	files, err := l.Files(dir)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.WarnContext(ctx, "category directory not found", "category", cat.Path, "dir", dir)
		span.SetAttributes(attribute.Bool("compatdata.missing", true))

		in.Missing = true

		return in, nil
	}

	if err != nil {
		return in, fmt.Errorf("category %s: %w", cat.Path, err)
	}

	in.Documents = make([]compat.Document, 0, len(files))

	for _, file := range files {
		doc, loadErr := l.loadFile(ctx, file)
		if loadErr != nil {
			span.RecordError(loadErr)
			span.SetStatus(codes.Error, "parse failed")

			return in, loadErr
		}

		in.Documents = append(in.Documents, doc)
	}

	span.SetAttributes(attribute.Int("compatdata.files", len(files)))

	return in, nil
}

func (l *Loader) loadFile(ctx context.Context, file string) (compat.Document, error) {
	_, span := l.tracer.Start(ctx, observability.SpanLoadFile)
	defer span.End()

	rel, err := l.relative(file)
	if err != nil {
		return compat.Document{}, err
	}

	span.SetAttributes(attribute.String("compatdata.file", rel))

	data, err := os.ReadFile(file)
	if err != nil {
		return compat.Document{}, fmt.Errorf("read %s: %w", rel, err)
	}

	return compat.ParseDocument(strings.TrimSuffix(rel, jsonExt), data)
}

// relative returns file relative to the root in slash form.
func (l *Loader) relative(file string) (string, error) {
	rel, err := filepath.Rel(l.root, file)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", file, err)
	}

	return filepath.ToSlash(rel), nil
}

// Files lists the *.json files below dir in lexical walk order.
func (l *Loader) Files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	var files []string

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.Type().IsRegular() && path.Ext(d.Name()) == jsonExt {
			files = append(files, p)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return files, nil
}

type versionFile struct {
	History []compat.VersionEntry `json:"history"`
}

// LoadHistory reads the history array of the version file. A missing file
// yields no history.
func (l *Loader) LoadHistory() ([]compat.VersionEntry, error) {
	file := filepath.Join(l.root, l.versionFile)

	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read version history: %w", err)
	}

	var vf versionFile

	err = json.Unmarshal(data, &vf)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.versionFile, err)
	}

	return vf.History, nil
}
