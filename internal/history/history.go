// Package history keeps a SQLite log of generation runs so coverage can be
// tracked across runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

const dirPerm = 0o750

// ErrInvalidLimit is returned for non-positive query limits.
var ErrInvalidLimit = errors.New("limit must be positive")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	generated_at TEXT    NOT NULL,
	total_apis   INTEGER NOT NULL,
	features     INTEGER NOT NULL,
	recent_apis  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS platform_stats (
	run_id           INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	platform         TEXT    NOT NULL,
	supported_count  INTEGER NOT NULL,
	coverage_percent INTEGER NOT NULL,
	exclusive_count  INTEGER NOT NULL,
	PRIMARY KEY (run_id, platform)
);
CREATE INDEX IF NOT EXISTS idx_platform_stats_platform ON platform_stats(platform);
`

// Run is one recorded generation.
type Run struct {
	ID          int64
	GeneratedAt string
	TotalAPIs   int
	Features    int
	RecentAPIs  int
	Platforms   map[string]compat.PlatformStats
}

// TrendPoint is a platform's stats in one run.
type TrendPoint struct {
	RunID       int64
	GeneratedAt string
	compat.PlatformStats
}

// Store is the run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	mkErr := os.MkdirAll(filepath.Dir(path), dirPerm)
	if mkErr != nil {
		return nil, fmt.Errorf("create history dir: %w", mkErr)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		_, execErr := db.ExecContext(ctx, pragma)
		if execErr != nil {
			db.Close()

			return nil, fmt.Errorf("%s: %w", pragma, execErr)
		}
	}

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("close history db: %w", err)
	}

	return nil
}

// Record stores the summary of stats and returns the new run id.
func (s *Store) Record(ctx context.Context, stats *compat.APIStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit.

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (generated_at, total_apis, features, recent_apis) VALUES (?, ?, ?, ?)`,
		stats.GeneratedAt, stats.Summary.TotalAPIs, len(stats.Features), len(stats.RecentAPIs))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for platform, ps := range stats.Summary.ByPlatform {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO platform_stats (run_id, platform, supported_count, coverage_percent, exclusive_count)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, platform, ps.SupportedCount, ps.CoveragePercent, ps.ExclusiveCount)
		if err != nil {
			return 0, fmt.Errorf("insert %s stats: %w", platform, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return runID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, total_apis, features, recent_apis FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		r := Run{Platforms: map[string]compat.PlatformStats{}}

		scanErr := rows.Scan(&r.ID, &r.GeneratedAt, &r.TotalAPIs, &r.Features, &r.RecentAPIs)
		if scanErr != nil {
			return nil, fmt.Errorf("scan run: %w", scanErr)
		}

		runs = append(runs, r)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		loadErr := s.loadPlatforms(ctx, &runs[i])
		if loadErr != nil {
			return nil, loadErr
		}
	}

	return runs, nil
}

func (s *Store) loadPlatforms(ctx context.Context, r *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT platform, supported_count, coverage_percent, exclusive_count FROM platform_stats WHERE run_id = ?`, r.ID)
	if err != nil {
		return fmt.Errorf("query platform stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			platform string
			ps       compat.PlatformStats
		)

		scanErr := rows.Scan(&platform, &ps.SupportedCount, &ps.CoveragePercent, &ps.ExclusiveCount)
		if scanErr != nil {
			return fmt.Errorf("scan platform stats: %w", scanErr)
		}

		r.Platforms[platform] = ps
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("iterate platform stats: %w", err)
	}

	return nil
}

// Trend returns up to limit stats of platform, oldest first.
func (s *Store) Trend(ctx context.Context, platform string, limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, generated_at, supported_count, coverage_percent, exclusive_count FROM (
			SELECT r.id, r.generated_at, p.supported_count, p.coverage_percent, p.exclusive_count
			FROM runs r JOIN platform_stats p ON p.run_id = r.id
			WHERE p.platform = ?
			ORDER BY r.id DESC LIMIT ?
		) ORDER BY id ASC`, platform, limit)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	var out []TrendPoint

	for rows.Next() {
		var tp TrendPoint

		scanErr := rows.Scan(&tp.RunID, &tp.GeneratedAt, &tp.SupportedCount, &tp.CoveragePercent, &tp.ExclusiveCount)
		if scanErr != nil {
			return nil, fmt.Errorf("scan trend: %w", scanErr)
		}

		out = append(out, tp)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate trend: %w", err)
	}

	return out, nil
}
