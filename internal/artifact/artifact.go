// Package artifact persists generated reports: JSON with an optional LZ4
// frame copy, read back from either, and YAML export.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

const (
	// CompressedExt is appended to the report path for the LZ4 copy.
	CompressedExt = ".lz4"

	tmpExtension = ".tmp"
	indentPrefix = ""
	indentString = "  "
	dirPerm      = 0o750
	filePerm     = 0o644
)

// Options control how the report is written.
type Options struct {
	Indent   bool
	Compress bool
}

// File is one written artifact.
type File struct {
	Path string
	Size int64
}

// HumanSize formats the size for display.
func (f File) HumanSize() string {
	return humanize.IBytes(uint64(max(f.Size, 0)))
}

// Result lists the written artifacts, the JSON report first.
type Result struct {
	Files []File
}

// String renders one "path (size)" pair per artifact.
func (r Result) String() string {
	parts := make([]string, 0, len(r.Files))

	for _, f := range r.Files {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Path, f.HumanSize()))
	}

	return strings.Join(parts, ", ")
}

// Paths returns the written paths.
func (r Result) Paths() []string {
	out := make([]string, 0, len(r.Files))

	for _, f := range r.Files {
		out = append(out, f.Path)
	}

	return out
}

// Encode writes the report as JSON. HTML characters are not escaped so
// doc URLs stay readable.
func Encode(w io.Writer, stats *compat.APIStats, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if indent {
		enc.SetIndent(indentPrefix, indentString)
	}

	err := enc.Encode(stats)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

// EncodeYAML writes the report as YAML.
func EncodeYAML(w io.Writer, stats *compat.APIStats) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(len(indentString))

	err := enc.Encode(stats)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	closeErr := enc.Close()
	if closeErr != nil {
		return fmt.Errorf("flush yaml: %w", closeErr)
	}

	return nil
}

// Write stores the report at path, and its LZ4 frame copy at path+".lz4"
// when opts.Compress is set. Files are replaced atomically.
func Write(path string, stats *compat.APIStats, opts Options) (Result, error) {
	var buf bytes.Buffer

	err := Encode(&buf, stats, opts.Indent)
	if err != nil {
		return Result{}, err
	}

	raw := buf.Bytes()

	var res Result

	file, err := writeAtomic(path, raw)
	if err != nil {
		return res, err
	}

	res.Files = append(res.Files, file)

	if !opts.Compress {
		return res, nil
	}

	compressed, err := compress(raw)
	if err != nil {
		return res, err
	}

	file, err = writeAtomic(path+CompressedExt, compressed)
	if err != nil {
		return res, err
	}

	res.Files = append(res.Files, file)

	return res, nil
}

// Read loads a report written by Write. Paths ending in .lz4 are
// decompressed first.
func Read(path string) (*compat.APIStats, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer fd.Close()

	var src io.Reader = fd
	if strings.HasSuffix(path, CompressedExt) {
		src = lz4.NewReader(fd)
	}

	return Decode(src)
}

// Decode reads a JSON report.
func Decode(r io.Reader) (*compat.APIStats, error) {
	var stats compat.APIStats

	err := json.NewDecoder(r).Decode(&stats)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &stats, nil
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := lz4.NewWriter(&buf)

	_, err := zw.Write(raw)
	if err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return nil, fmt.Errorf("lz4 close: %w", closeErr)
	}

	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) (File, error) {
	dir := filepath.Dir(path)

	mkErr := os.MkdirAll(dir, dirPerm)
	if mkErr != nil {
		return File{}, fmt.Errorf("create output dir: %w", mkErr)
	}

	tmpPath := path + tmpExtension

	writeErr := os.WriteFile(tmpPath, data, filePerm)
	if writeErr != nil {
		return File{}, fmt.Errorf("write %s: %w", tmpPath, writeErr)
	}

	renameErr := os.Rename(tmpPath, path)
	if renameErr != nil {
		return File{}, fmt.Errorf("rename %s: %w", path, renameErr)
	}

	return File{Path: path, Size: int64(len(data))}, nil
}
