package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one finished click run.
type Run struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      time.Time
	Clicks       int
	ClickLimit   int
	IntervalMs   float64
	Button       string
	PositionMode string
	Reason       string
}

func (r Run) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

type DB struct {
	conn *sql.DB
}

// DefaultPath is history.db next to the settings file.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", ".autoclick-history.db")
	}
	return filepath.Join(configDir, "autoclick", "history.db")
}

// Open opens the database at path and initializes the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at_ms INTEGER NOT NULL,
		ended_at_ms INTEGER NOT NULL,
		clicks INTEGER NOT NULL,
		click_limit INTEGER NOT NULL,
		interval_ms REAL NOT NULL,
		button TEXT NOT NULL,
		position_mode TEXT NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at_ms);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Insert stores r and sets its ID.
func (db *DB) Insert(ctx context.Context, r *Run) error {
	query := `
		INSERT INTO runs (
			started_at_ms, ended_at_ms, clicks, click_limit, interval_ms,
			button, position_mode, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.ExecContext(ctx, query,
		r.StartedAt.UnixMilli(), r.EndedAt.UnixMilli(), r.Clicks, r.ClickLimit, r.IntervalMs,
		r.Button, r.PositionMode, r.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	r.ID = id
	return nil
}

// Recent returns up to limit runs, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT
			id, started_at_ms, ended_at_ms, clicks, click_limit, interval_ms,
			button, position_mode, reason
		FROM runs
		ORDER BY started_at_ms DESC, id DESC
		LIMIT ?
	`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			r         Run
			startedMs int64
			endedMs   int64
		)
		if err := rows.Scan(
			&r.ID, &startedMs, &endedMs, &r.Clicks, &r.ClickLimit, &r.IntervalMs,
			&r.Button, &r.PositionMode, &r.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.EndedAt = time.UnixMilli(endedMs)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Totals sums clicks and run count over the whole table.
func (db *DB) Totals(ctx context.Context) (runs int, clicks int64, err error) {
	row := db.conn.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(clicks), 0) FROM runs`)
	if err := row.Scan(&runs, &clicks); err != nil {
		return 0, 0, fmt.Errorf("failed to query totals: %w", err)
	}
	return runs, clicks, nil
}
