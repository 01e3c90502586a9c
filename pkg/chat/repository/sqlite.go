package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/liv-ai/liv-backend/pkg/chat"
)

// SQLite is a durable history store backed by a SQLite database.
type SQLite struct {
	db *sqlx.DB
}

var _ chat.Storage = (*SQLite)(nil)

func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to SQLite")
	}

	// WAL mode for better concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, errors.Wrap(err, "enabling WAL mode")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_user_id ON chat_messages(user_id);
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating chat_messages table")
	}

	return &SQLite{db: db}, nil
}

// messageRow is the database shape of a chat.Message. Timestamps are stored
// as RFC3339 strings.
type messageRow struct {
	ID           string `db:"id"`
	UserID       string `db:"user_id"`
	Role         string `db:"role"`
	Content      string `db:"content"`
	CreatedAtStr string `db:"created_at"`
}

func (m *messageRow) toMessage() chat.Message {
	createdAt, err := time.Parse(time.RFC3339Nano, m.CreatedAtStr)
	if err != nil {
		createdAt = time.Time{}
	}
	return chat.Message{
		ID:        m.ID,
		Role:      chat.Role(m.Role),
		Content:   m.Content,
		CreatedAt: createdAt,
	}
}

func (r *SQLite) Append(ctx context.Context, userID string, message chat.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID, userID, string(message.Role), message.Content, message.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "inserting chat message")
	}
	return nil
}

func (r *SQLite) History(ctx context.Context, userID string) ([]chat.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, role, content, created_at FROM chat_messages WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting chat messages")
	}

	history := make([]chat.Message, 0, len(rows))
	for i := range rows {
		history = append(history, rows[i].toMessage())
	}
	return history, nil
}

func (r *SQLite) Close() error {
	return r.db.Close()
}
