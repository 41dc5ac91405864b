// Package history persists a log of performed targeting operations to SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database connection
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the specified path
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// ExecTx executes a function within a transaction
func (s *Store) ExecTx(fn func(*sql.Tx) error) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Migrate creates the operation log schema if it does not exist yet
func (s *Store) Migrate() error {
	return s.ExecTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS operation_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				operation TEXT NOT NULL,
				target TEXT NOT NULL,
				status TEXT NOT NULL,
				confidence REAL,
				screen_x INTEGER,
				screen_y INTEGER,
				elapsed_ms INTEGER NOT NULL,
				polls INTEGER NOT NULL DEFAULT 0,
				error_message TEXT,
				recorded_at TIMESTAMP NOT NULL
			)
		`)
		if err != nil {
			return fmt.Errorf("failed to create operation_log: %w", err)
		}

		_, err = tx.Exec(`
			CREATE INDEX IF NOT EXISTS idx_operation_log_recorded_at
			ON operation_log (recorded_at DESC)
		`)
		return err
	})
}

// Operation is one recorded targeting operation.
type Operation struct {
	ID           int64
	Operation    string // e.g. "click_image", "wait_text"
	Target       string // template name or text query
	Status       string // "found", "timed_out", "failed"
	Confidence   float64
	ScreenX      int
	ScreenY      int
	Elapsed      time.Duration
	Polls        int
	ErrorMessage string
	RecordedAt   time.Time
}

const (
	StatusFound    = "found"
	StatusTimedOut = "timed_out"
	StatusFailed   = "failed"
)

// Record inserts an operation into the log and returns its ID
func (s *Store) Record(op *Operation) (int64, error) {
	var id int64
	err := s.ExecTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO operation_log (
				operation, target, status, confidence,
				screen_x, screen_y, elapsed_ms, polls,
				error_message, recorded_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, op.Operation, op.Target, op.Status, op.Confidence,
			op.ScreenX, op.ScreenY, op.Elapsed.Milliseconds(), op.Polls,
			op.ErrorMessage, time.Now())

		if err != nil {
			return fmt.Errorf("failed to insert operation log: %w", err)
		}

		id, err = result.LastInsertId()
		return err
	})

	if err != nil {
		return 0, err
	}
	return id, nil
}

// Recent returns the most recent operations, newest first
func (s *Store) Recent(limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.conn.Query(`
		SELECT
			id, operation, target, status, confidence,
			screen_x, screen_y, elapsed_ms, polls,
			error_message, recorded_at
		FROM operation_log
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := []*Operation{}
	for rows.Next() {
		op := &Operation{}
		var elapsedMs int64
		err := rows.Scan(
			&op.ID, &op.Operation, &op.Target, &op.Status, &op.Confidence,
			&op.ScreenX, &op.ScreenY, &elapsedMs, &op.Polls,
			&op.ErrorMessage, &op.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		op.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

// Stats returns operation counts per status for a time range
func (s *Store) Stats(startDate, endDate time.Time) (map[string]int, error) {
	rows, err := s.conn.Query(`
		SELECT status, COUNT(*) as count
		FROM operation_log
		WHERE recorded_at BETWEEN ? AND ?
		GROUP BY status
	`, startDate, endDate)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}

	return stats, rows.Err()
}

// DeleteOlderThan deletes operations recorded before the given time
func (s *Store) DeleteOlderThan(olderThan time.Time) (int64, error) {
	var deleted int64
	err := s.ExecTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			DELETE FROM operation_log
			WHERE recorded_at < ?
		`, olderThan)

		if err != nil {
			return err
		}

		deleted, err = result.RowsAffected()
		return err
	})

	return deleted, err
}
