package app

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
	"github.com/louisbranch/nois/internal/services/social/storage"
)

// PostMessage stores body as a message of userID in roomID. The author must
// be a member; nickname and color are captured as they are now.
func (s *Service) PostMessage(ctx context.Context, roomID int64, userID int64, body string) (storage.Message, error) {
	if strings.TrimSpace(body) == "" {
		return storage.Message{}, apperrors.New(apperrors.CodeMessageEmpty, "empty message")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return storage.Message{}, apperrors.WithMetadata(apperrors.CodeMessageTooLong, "message too long",
			map[string]string{"Max": strconv.Itoa(MaxMessageLength)})
	}
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return storage.Message{}, err
	}
	if _, err := s.requireActiveRoom(ctx, roomID); err != nil {
		return storage.Message{}, err
	}
	member, err := s.store.IsMember(ctx, roomID, userID)
	if err != nil {
		return storage.Message{}, err
	}
	if !member {
		return storage.Message{}, apperrors.New(apperrors.CodeRoomNotMember, "not a member")
	}

	message, err := s.store.CreateMessage(ctx, storage.Message{
		RoomID:       roomID,
		UserID:       userID,
		Body:         body,
		UserNickname: user.Nickname,
		UserColorHex: user.ColorHex,
		CreatedAt:    s.timestamp(),
	})
	if err != nil {
		return storage.Message{}, err
	}
	s.logger.Debug("message posted",
		zap.Int64("room_id", roomID),
		zap.Int64("message_id", message.MessageID),
	)
	return message, nil
}

// History returns the latest messages of roomID, oldest first. A
// non-positive limit selects the configured default.
func (s *Service) History(ctx context.Context, roomID int64, limit int) ([]storage.Message, error) {
	if _, err := s.requireActiveRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	return s.store.ListRoomMessages(ctx, roomID, min(limit, MaxHistoryLimit))
}

// PurgeMessages deletes every message of userID and reports how many were
// removed.
func (s *Service) PurgeMessages(ctx context.Context, userID int64) (int64, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}
	deleted, err := s.store.DeleteUserMessages(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("messages purged", zap.Int64("user_id", userID), zap.Int64("deleted", deleted))
	return deleted, nil
}
