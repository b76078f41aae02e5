// Package activity provides a SQLite-backed event log for the library.
//
// The log is append-only history for the activity feed, separate from the
// record store: losing it never affects library consistency, and recording
// failures are logged rather than propagated.
package activity

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Event is one recorded library action.
type Event struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	SubjectID string    `json:"subject_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Log records and lists library events.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates an activity log at the given SQLite path.
// Configures WAL mode and runs the schema migration.
func Open(path string, logger *slog.Logger) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Log{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends an event. Best effort: failures are logged, never returned,
// so the triggering library operation cannot fail on feed bookkeeping.
func (l *Log) Record(ctx context.Context, action, subjectID, detail string) {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO events (id, action, subject_id, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), action, subjectID, detail, formatTime(time.Now()),
	)
	if err != nil && l.logger != nil {
		l.logger.Warn("failed to record activity", "action", action, "error", err)
	}
}

// ListRecent returns the newest events, most recent first.
func (l *Log) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, action, subject_id, detail, created_at FROM events ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &e.SubjectID, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse event time: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune deletes events older than the cutoff and returns the count removed.
func (l *Log) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))
	res, err := l.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
