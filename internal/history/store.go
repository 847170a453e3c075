// Package history persists summaries of completed search runs in a local
// SQLite database so past runs can be listed and compared.
//
// History is best-effort: callers treat store failures as warnings, never as
// search failures.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/seeker/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// DefaultListLimit is the number of runs RecentRuns returns when the caller
// does not pass a positive limit.
const DefaultListLimit = 20

// Stats aggregates the recorded runs.
type Stats struct {
	Runs        int64
	Matches     int64
	Directories int64
	Canceled    int64
	AverageTime time.Duration
	LastRun     time.Time
}

// Store manages the SQLite database holding past run summaries.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database.
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory database
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure parent directory exists for file-based databases
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes the schema.
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent access with retry logic.
	// Set busy_timeout FIRST so subsequent operations wait on locks.
	// Use retry with backoff for "database is locked" errors that can occur
	// during concurrent initialization of the same database file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, sql string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(sql)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		delay := baseDelay * time.Duration(1<<attempt)
		time.Sleep(delay)
	}
	return lastErr
}

// initSchema applies the embedded schema. Statements use IF NOT EXISTS, so
// reopening an existing database is a no-op.
func (s *Store) initSchema() error {
	if err := execWithRetry(s.db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// RecordRun inserts a run summary.
func (s *Store) RecordRun(ctx context.Context, record *models.RunRecord) error {
	query := `INSERT INTO runs
		(id, root, mode, pattern, keyword, terms, fraction, months, workers, started_at, duration_ms, directories, matches, canceled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Root,
		record.Mode,
		record.Pattern,
		record.Keyword,
		record.Terms,
		record.Fraction,
		record.Months,
		record.Workers,
		record.StartedAt,
		record.Duration.Milliseconds(),
		record.Directories,
		record.Matches,
		record.Canceled,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// RecentRuns retrieves the most recent runs, newest first.
// A non-positive limit falls back to DefaultListLimit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, root, mode, pattern, keyword, terms, fraction, months, workers, started_at, duration_ms, directories, matches, canceled
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []*models.RunRecord
	for rows.Next() {
		record := &models.RunRecord{}
		var durationMS int64
		err := rows.Scan(
			&record.ID,
			&record.Root,
			&record.Mode,
			&record.Pattern,
			&record.Keyword,
			&record.Terms,
			&record.Fraction,
			&record.Months,
			&record.Workers,
			&record.StartedAt,
			&durationMS,
			&record.Directories,
			&record.Matches,
			&record.Canceled,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		record.Duration = time.Duration(durationMS) * time.Millisecond

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return records, nil
}

// Stats aggregates all recorded runs.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(matches), 0),
		COALESCE(SUM(directories), 0),
		COALESCE(SUM(canceled), 0),
		COALESCE(AVG(duration_ms), 0)
		FROM runs`

	stats := &Stats{}
	var avgMS float64
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Runs,
		&stats.Matches,
		&stats.Directories,
		&stats.Canceled,
		&avgMS,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	stats.AverageTime = time.Duration(avgMS) * time.Millisecond

	if stats.Runs > 0 {
		var lastRun time.Time
		err := s.db.QueryRowContext(ctx,
			`SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1`,
		).Scan(&lastRun)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("query last run: %w", err)
		}
		stats.LastRun = lastRun
	}

	return stats, nil
}

// Clear deletes all recorded runs and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count removed runs: %w", err)
	}

	return removed, nil
}
