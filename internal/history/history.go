// Package history keeps a SQLite log of successful remote saves. Only the
// receipts are stored, never the resume itself.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/cvdraft/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS saves (
	resume_id   TEXT PRIMARY KEY,
	message     TEXT NOT NULL DEFAULT '',
	saved_at    TEXT NOT NULL DEFAULT '',
	full_name   TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_saves_recorded_at ON saves(recorded_at);
`

// Receipt is one successful save.
type Receipt struct {
	ResumeID string `json:"resume_id"`
	Message  string `json:"message"`
	// SavedAt is the timestamp reported by the backend, kept verbatim.
	SavedAt    string    `json:"saved_at"`
	FullName   string    `json:"full_name"`
	Checksum   string    `json:"checksum"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Log is the receipt store used by the editor and the API.
type Log interface {
	Record(ctx context.Context, r Receipt) error
	List(ctx context.Context, limit int) ([]Receipt, error)
	Latest(ctx context.Context) (*Receipt, error)
}

var _ Log = (*DB)(nil)

// DB is the SQLite implementation of Log.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record stores r. Saving the same resume id twice keeps the newer receipt.
func (db *DB) Record(ctx context.Context, r Receipt) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO saves (resume_id, message, saved_at, full_name, checksum, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(resume_id) DO UPDATE SET
			message     = excluded.message,
			saved_at    = excluded.saved_at,
			full_name   = excluded.full_name,
			checksum    = excluded.checksum,
			recorded_at = excluded.recorded_at
	`, r.ResumeID, r.Message, r.SavedAt, r.FullName, r.Checksum, r.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("history: record %s: %w", r.ResumeID, err)
	}
	return nil
}

// List returns receipts newest first. limit <= 0 means 50.
func (db *DB) List(ctx context.Context, limit int) ([]Receipt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT resume_id, message, saved_at, full_name, checksum, recorded_at
		FROM saves ORDER BY recorded_at DESC, resume_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := []Receipt{}
	for rows.Next() {
		var r Receipt
		if err := rows.Scan(&r.ResumeID, &r.Message, &r.SavedAt, &r.FullName, &r.Checksum, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Latest returns the newest receipt or apperr.ErrNotFound.
func (db *DB) Latest(ctx context.Context) (*Receipt, error) {
	var r Receipt
	err := db.conn.QueryRowContext(ctx, `
		SELECT resume_id, message, saved_at, full_name, checksum, recorded_at
		FROM saves ORDER BY recorded_at DESC, resume_id DESC LIMIT 1
	`).Scan(&r.ResumeID, &r.Message, &r.SavedAt, &r.FullName, &r.Checksum, &r.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: latest: %w", err)
	}
	return &r, nil
}
