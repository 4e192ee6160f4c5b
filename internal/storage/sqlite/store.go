// Package sqlite records scan and focus runs for offline analysis.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultPath = "data/edgescan.db"

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the run-history tables exist.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, stmt := range []string{signalRunsSchemaSQL, focusRunsSchemaSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const signalRunsSchemaSQL = `
CREATE TABLE IF NOT EXISTS signal_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	generated_at INTEGER NOT NULL,
	signal_count INTEGER NOT NULL,
	best_symbol TEXT,
	best_edge_bps REAL,
	payload_json TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_signal_runs_generated_at ON signal_runs(generated_at);
`

const focusRunsSchemaSQL = `
CREATE TABLE IF NOT EXISTS focus_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entropy TEXT NOT NULL,
	source TEXT NOT NULL,
	target_count INTEGER NOT NULL,
	targets_json TEXT NOT NULL,
	raw_output TEXT,
	recorded_at TEXT NOT NULL
);
`
