// ABOUTME: SQLite-backed checkpoint store for session transcripts
// ABOUTME: Lets a finished conversation be indexed to long-term memory later
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/membridge/recall/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	thread_id  TEXT NOT NULL,
	kind       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, created_at);
`

// Store persists session messages in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing session schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one message under its thread. Replays of an already-stored
// message id are silently ignored.
func (s *Store) Append(ctx context.Context, threadID string, m models.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO messages (id, thread_id, kind, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, threadID, string(m.Kind), m.Content, m.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("appending message %s: %w", m.ID, err)
	}
	return nil
}

// Messages loads a thread's messages oldest to newest.
func (s *Store) Messages(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, content, created_at FROM messages WHERE thread_id = ? ORDER BY created_at, id`,
		threadID)
	if err != nil {
		return nil, fmt.Errorf("loading messages for %s: %w", threadID, err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		var kind, createdAt string
		if err := rows.Scan(&m.ID, &kind, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		m.Kind = models.MessageKind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			m.Timestamp = ts
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Threads lists all thread ids with stored messages.
func (s *Store) Threads(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT thread_id FROM messages ORDER BY thread_id`)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning thread id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
