package chat

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository is the Postgres-backed MessageStore.
type Repository struct {
	db *sql.DB
}

var _ MessageStore = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Append(ctx context.Context, sender, receiver, content string) (*Message, error) {
	msg := &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	query := `INSERT INTO messages (id, sender, receiver, content, created_at)
              VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, msg.ID, msg.Sender, msg.Receiver, msg.Content, msg.Timestamp); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *Repository) History(ctx context.Context, userA, userB string) ([]Message, error) {
	query := `
		SELECT id, sender, receiver, content, created_at
		FROM messages
		WHERE (sender = $1 AND receiver = $2)
		   OR (sender = $2 AND receiver = $1)
		ORDER BY created_at ASC, id ASC
	`
	return r.queryMessages(ctx, query, userA, userB)
}

func (r *Repository) AllInvolving(ctx context.Context, userID string) ([]Message, error) {
	query := `
		SELECT id, sender, receiver, content, created_at
		FROM messages
		WHERE sender = $1 OR receiver = $1
	`
	return r.queryMessages(ctx, query, userID)
}

func (r *Repository) queryMessages(ctx context.Context, query string, args ...interface{}) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Receiver, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
