package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/nois/internal/services/social/storage"
)

// CreateMessage inserts one message and returns it with its assigned id.
func (s *Store) CreateMessage(ctx context.Context, message storage.Message) (storage.Message, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Message{}, err
	}
	if strings.TrimSpace(message.Body) == "" {
		return storage.Message{}, fmt.Errorf("message body is required")
	}
	message.CreatedAt = message.CreatedAt.UTC()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO messages (room_id, user_id, body, user_nickname, user_color_hex, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		message.RoomID,
		message.UserID,
		message.Body,
		message.UserNickname,
		message.UserColorHex,
		toMillis(message.CreatedAt),
	)
	if err != nil {
		return storage.Message{}, fmt.Errorf("create message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.Message{}, fmt.Errorf("create message: last insert id: %w", err)
	}
	message.MessageID = id
	message.CreatedAt = fromMillis(toMillis(message.CreatedAt))
	return message, nil
}

// ListRoomMessages returns the latest limit messages of roomID, oldest first.
func (s *Store) ListRoomMessages(ctx context.Context, roomID int64, limit int) ([]storage.Message, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT message_id, room_id, user_id, body, user_nickname, user_color_hex, created_at
		   FROM (
		         SELECT message_id, room_id, user_id, body, user_nickname, user_color_hex, created_at
		           FROM messages
		          WHERE room_id = ?
		          ORDER BY created_at DESC, message_id DESC
		          LIMIT ?
		        )
		  ORDER BY created_at ASC, message_id ASC`,
		roomID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list room messages: %w", err)
	}
	defer rows.Close()

	var messages []storage.Message
	for rows.Next() {
		var message storage.Message
		var createdAt int64
		if err := rows.Scan(
			&message.MessageID,
			&message.RoomID,
			&message.UserID,
			&message.Body,
			&message.UserNickname,
			&message.UserColorHex,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list room messages: %w", err)
		}
		message.CreatedAt = fromMillis(createdAt)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list room messages: %w", err)
	}
	return messages, nil
}

// DeleteUserMessages removes every message of userID and reports how many
// were deleted.
func (s *Store) DeleteUserMessages(ctx context.Context, userID int64) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user messages: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user messages: rows affected: %w", err)
	}
	return deleted, nil
}
