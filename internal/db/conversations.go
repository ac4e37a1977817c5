package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/philipposk/ThatJob/internal/types"
)

// CreateConversation starts a chat conversation, optionally anchored to a
// generated document.
func (db *DB) CreateConversation(ctx context.Context, c *types.ChatConversation) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO chat_conversations (user_id, title, document_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.UserID, c.Title, c.DocumentID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation scoped to its owner. Returns
// nil, nil when it does not exist or belongs to another user.
func (db *DB) GetConversation(ctx context.Context, userID, id uuid.UUID) (*types.ChatConversation, error) {
	var c types.ChatConversation
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, document_id, created_at, updated_at
		 FROM chat_conversations WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.DocumentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &c, nil
}

// AppendMessage adds a message to a conversation and touches its updated_at.
func (db *DB) AppendMessage(ctx context.Context, m *types.ChatMessage) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (conversation_id, role, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.ConversationID, m.Role, m.Content,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	_, _ = db.pool.Exec(ctx,
		`UPDATE chat_conversations SET updated_at = NOW() WHERE id = $1`,
		m.ConversationID,
	)
	return nil
}

// MessagesByConversation lists a conversation's messages in chronological
// order.
func (db *DB) MessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]types.ChatMessage, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM chat_messages WHERE conversation_id = $1
		 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
