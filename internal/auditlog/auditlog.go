// Package auditlog provides a SQLite-backed implementation of
// flowtrack.ReportRecorder, indexing every emitted heavy-hitter report so
// an operator can look up "what reports exist for session N" without
// scanning the filesystem.
package auditlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const schemaVersion = 1

// Log is a SQLite-backed index of thresholded-flow reports. Recording a
// report again under the same session id and sequence number replaces the
// earlier row.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the reports table exists.
func Open(ctx context.Context, path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("open auditlog: path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open auditlog: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping auditlog: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Log{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			session_id INTEGER NOT NULL,
			sequence_number INTEGER NOT NULL,
			qualifying INTEGER NOT NULL,
			path TEXT NOT NULL,
			emitted_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, sequence_number)
		)`,
		"CREATE INDEX IF NOT EXISTS idx_reports_emitted_at ON reports(emitted_at)",
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %q: %w", stmt, err)
		}
	}
	return nil
}

// RecordReport implements flowtrack.ReportRecorder.
func (l *Log) RecordReport(sessionID uint64, sequenceNumber int64, qualifying int, path string) error {
	ctx := context.Background()
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (session_id, sequence_number, qualifying, path, emitted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		int64(sessionID), sequenceNumber, qualifying, path, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	return nil
}

// Report is one indexed report row.
type Report struct {
	SessionID      uint64
	SequenceNumber int64
	Qualifying     int
	Path           string
	EmittedAt      int64
}

// ReportsForSession returns every indexed report for sessionID, ordered by
// sequence number.
func (l *Log) ReportsForSession(ctx context.Context, sessionID uint64) ([]Report, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT session_id, sequence_number, qualifying, path, emitted_at
		 FROM reports WHERE session_id = ? ORDER BY sequence_number ASC`,
		int64(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var sid int64
		if err := rows.Scan(&sid, &r.SequenceNumber, &r.Qualifying, &r.Path, &r.EmittedAt); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.SessionID = uint64(sid)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
