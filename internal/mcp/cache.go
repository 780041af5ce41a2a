package mcp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sumatoshi-tech/compatstats/internal/artifact"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

// DefaultCacheSize is the number of decoded reports kept when no size is given.
const DefaultCacheSize = 8

// ErrNoReport is returned when neither the call nor the server names a report.
var ErrNoReport = errors.New("report_path is required: no default report configured")

// ReportCache keeps decoded reports keyed by path, modification time and size,
// so a regenerated report is picked up on the next call.
type ReportCache struct {
	entries *lru.Cache[string, *compat.APIStats]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewReportCache creates a cache holding up to size reports.
func NewReportCache(size int) (*ReportCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	entries, err := lru.New[string, *compat.APIStats](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}

	return &ReportCache{entries: entries}, nil
}

// Load returns the report at path, decoding it only when the file changed.
func (c *ReportCache) Load(path string) (*compat.APIStats, error) {
	if path == "" {
		return nil, ErrNoReport
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat report: %w", err)
	}

	key := abs + "@" + strconv.FormatInt(info.ModTime().UnixNano(), 10) + "/" + strconv.FormatInt(info.Size(), 10)

	if stats, ok := c.entries.Get(key); ok {
		c.hits.Add(1)

		return stats, nil
	}

	c.misses.Add(1)

	stats, err := artifact.Read(abs)
	if err != nil {
		return nil, err
	}

	c.entries.Add(key, stats)

	return stats, nil
}

// Hits is the number of loads served from memory.
func (c *ReportCache) Hits() int64 { return c.hits.Load() }

// Misses is the number of loads that decoded the file.
func (c *ReportCache) Misses() int64 { return c.misses.Load() }

// Len is the number of cached reports.
func (c *ReportCache) Len() int { return c.entries.Len() }
