// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed runs in a local SQLite database so
// earlier verdicts stay auditable after the Notion page is overwritten.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bookwatch/pkg/types"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID          int64
	Timestamp   time.Time
	Total       int
	Available   int
	Unavailable int
	Failed      int
}

// NewStore opens or creates the history database at path, creating
// parent directories and the schema as needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			total INTEGER NOT NULL,
			available INTEGER NOT NULL,
			unavailable INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			title TEXT NOT NULL,
			author TEXT,
			keyword TEXT,
			available INTEGER NOT NULL,
			confidence REAL NOT NULL,
			reasoning TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_run_id ON checks(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_title ON checks(title)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun persists the summary and every per-book check in one
// transaction. Returns the new run's ID.
func (s *Store) RecordRun(summary types.RunSummary) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (timestamp, total, available, unavailable, failed)
		 VALUES (?, ?, ?, ?, ?)`,
		summary.Timestamp.UTC().Format(time.RFC3339),
		summary.Total, summary.Available, summary.Unavailable, len(summary.Failed),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO checks (run_id, title, author, keyword, available, confidence, reasoning, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing check insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range summary.Results {
		_, err := stmt.Exec(
			runID, r.Query.Title, r.Query.Author, r.Outcome.Keyword,
			r.Verdict.Available, r.Verdict.Confidence, r.Verdict.Reasoning, r.Verdict.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting check for %q: %w", r.Query.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, timestamp, total, available, unavailable, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Total, &r.Available, &r.Unavailable, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp %q: %w", ts, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Checks returns the per-book rows of one run in insertion order.
func (s *Store) Checks(runID int64) ([]types.BookVerdict, error) {
	rows, err := s.db.Query(
		`SELECT title, author, keyword, available, confidence, reasoning, error
		 FROM checks WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying checks: %w", err)
	}
	defer rows.Close()

	var checks []types.BookVerdict
	for rows.Next() {
		var bv types.BookVerdict
		if err := rows.Scan(
			&bv.Query.Title, &bv.Query.Author, &bv.Outcome.Keyword,
			&bv.Verdict.Available, &bv.Verdict.Confidence,
			&bv.Verdict.Reasoning, &bv.Verdict.Error,
		); err != nil {
			return nil, fmt.Errorf("scanning check: %w", err)
		}
		checks = append(checks, bv)
	}
	return checks, rows.Err()
}
