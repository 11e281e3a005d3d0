// ABOUTME: Local SQLite transcript archive using modernc.org/sqlite
// ABOUTME: Records chat sessions and their events with automatic schema creation

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Archive is a local, append-only record of conversations the client
// has streamed. It lives entirely on the caller's side; the backend
// never sees it.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// Event is one archived line of a conversation.
type Event struct {
	ID        string
	SessionID string
	Role      string // "user" or "assistant"
	Type      string // wire event type: plain, image, record, file, ...
	Body      string
	Timestamp time.Time
}

// SessionInfo summarizes one archived session.
type SessionInfo struct {
	ID         string
	PlatformID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	EventCount int
}

// Open creates or opens an archive at the given path. The schema is
// automatically created if it doesn't exist. Parent directories are
// created if needed.
func Open(path string) (*Archive, error) {
	logger := slog.Default().With("component", "archive")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	a := &Archive{
		db:     db,
		logger: logger,
	}

	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("archive opened", "path", path)
	return a, nil
}

// createSchema creates the archive tables if they don't exist
func (a *Archive) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			platform_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			type TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_events_session
			ON events(session_id, created_at);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Append records one event, creating the session row on first use.
// A missing event ID is filled with a fresh UUID; a zero timestamp
// with the current time.
func (a *Archive) Append(ctx context.Context, sessionID, platformID string, e *Event) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.SessionID = sessionID

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, platform_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, sessionID, platformID, now, now)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, session_id, role, type, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, sessionID, e.Role, e.Type, e.Body, e.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Events returns a session's archived events in chronological order.
func (a *Archive) Events(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, session_id, role, type, body, created_at
		FROM events
		WHERE session_id = ?
		ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Type, &e.Body, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Sessions lists archived sessions, most recently updated first.
func (a *Archive) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT s.id, s.platform_id, s.created_at, s.updated_at, COUNT(e.id)
		FROM sessions s
		LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var s SessionInfo
		if err := rows.Scan(&s.ID, &s.PlatformID, &s.CreatedAt, &s.UpdatedAt, &s.EventCount); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
