package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chat-backend/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for chat messages. Each operation is
// atomic and self-contained; callers never span a read and a later write in
// one transaction.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID string, senderID int, content string, timestamp int64) (models.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	MarkDeleted(ctx context.Context, messageID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns it with the sender's current
// display name resolved.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID string, senderID int, content string, timestamp int64) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `WITH inserted AS (
            INSERT INTO messages (chat_id, sender_id, content, timestamp) VALUES ($1, $2, $3, $4)
            RETURNING id, chat_id, sender_id, content, timestamp, deleted
        )
        SELECT i.id, i.chat_id, i.sender_id, u.display_name AS sender, i.content, i.timestamp, i.deleted
        FROM inserted i INNER JOIN users u ON u.id = i.sender_id`, chatID, senderID, content, timestamp).
		StructScan(&msg)
	return msg, err
}

// ListMessages returns every message of a chat ordered by timestamp then id,
// deleted ones included, annotated with the sender's current display name.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT m.id, m.chat_id, m.sender_id, u.display_name AS sender, m.content, m.timestamp, m.deleted
        FROM messages m INNER JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id=$1
        ORDER BY m.timestamp ASC, m.id ASC`, chatID)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT m.id, m.chat_id, m.sender_id, u.display_name AS sender, m.content, m.timestamp, m.deleted
        FROM messages m INNER JOIN users u ON u.id = m.sender_id
        WHERE m.id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// MarkDeleted sets the deleted flag; the content stays intact.
func (r *MessageRepo) MarkDeleted(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET deleted = TRUE WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
