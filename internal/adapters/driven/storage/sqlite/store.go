// Package sqlite provides the SQLite-backed run history store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/wikibot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// DefaultListLimit bounds ListRuns when the caller passes no limit.
const DefaultListLimit = 20

// Store persists ingestion run reports in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a run store at the specified data directory.
// If dataDir is empty, defaults to ~/.wikibot/data/runs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".wikibot", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")

	// WAL mode so a serve process can read while an ingest run writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun stores a finished run report.
func (s *Store) SaveRun(ctx context.Context, report *domain.IngestReport) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("sqlite: %w: report with id", domain.ErrInvalidInput)
	}

	failures, err := json.Marshal(report.Failures)
	if err != nil {
		return fmt.Errorf("marshal failures: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs
			(id, space_key, total, processed, skipped, errored, failures, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.SpaceKey,
		report.Total, report.Processed, report.Skipped, report.Errored,
		string(failures),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.IngestReport, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, space_key, total, processed, skipped, errored, failures, started_at, finished_at
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestReport
	for rows.Next() {
		report, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recent run for a space.
func (s *Store) LastRun(ctx context.Context, spaceKey string) (*domain.IngestReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, space_key, total, processed, skipped, errored, failures, started_at, finished_at
		FROM ingest_runs
		WHERE space_key = ?
		ORDER BY started_at DESC
		LIMIT 1`, spaceKey)

	report, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("space %s: %w", spaceKey, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// scanRun reads one ingest_runs row.
func scanRun(scan func(dest ...any) error) (*domain.IngestReport, error) {
	var report domain.IngestReport
	var failures, startedAt, finishedAt string
	err := scan(
		&report.ID, &report.SpaceKey,
		&report.Total, &report.Processed, &report.Skipped, &report.Errored,
		&failures, &startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(failures), &report.Failures); err != nil {
		return nil, fmt.Errorf("unmarshal failures for run %s: %w", report.ID, err)
	}
	if report.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at for run %s: %w", report.ID, err)
	}
	if report.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at for run %s: %w", report.ID, err)
	}
	return &report, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
