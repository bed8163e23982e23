package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
	"github.com/louisbranch/nois/internal/services/social/storage"
)

// CreateRoomInput describes a new room.
type CreateRoomInput struct {
	Name     string
	IsPublic bool
	// Password is optional; when set, joining requires it.
	Password string
	// MaxParticipants of zero selects the store default.
	MaxParticipants int
}

// CreateRoom creates a room owned by userID and joins the owner to it.
func (s *Service) CreateRoom(ctx context.Context, userID int64, input CreateRoomInput) (storage.Room, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return storage.Room{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxRoomNameLength {
		return storage.Room{}, apperrors.WithMetadata(apperrors.CodeRoomNameInvalid, "invalid room name",
			map[string]string{"Max": strconv.Itoa(MaxRoomNameLength)})
	}
	if input.MaxParticipants != 0 && (input.MaxParticipants < MinRoomParticipants || input.MaxParticipants > MaxRoomParticipants) {
		return storage.Room{}, apperrors.WithMetadata(apperrors.CodeRoomCapacityInvalid, "invalid room capacity",
			map[string]string{"Max": strconv.Itoa(MaxRoomParticipants)})
	}

	var passwordHash string
	if input.Password != "" {
		cost := s.cfg.PasswordCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), cost)
		if err != nil {
			return storage.Room{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "hash room password: "+err.Error(),
				map[string]string{"Reason": "password cannot be used"})
		}
		passwordHash = string(hash)
	}

	now := s.timestamp()
	room, err := s.store.CreateRoomWithOwner(ctx, storage.Room{
		Name:            name,
		CreatedBy:       userID,
		IsPublic:        input.IsPublic,
		PasswordHash:    passwordHash,
		MaxParticipants: input.MaxParticipants,
		CreatedAt:       now,
	})
	if err != nil {
		return storage.Room{}, err
	}
	s.logger.Info("room created",
		zap.Int64("room_id", room.RoomID),
		zap.Int64("user_id", userID),
		zap.Bool("public", room.IsPublic),
		zap.Bool("password", room.HasPassword()),
	)
	return room, nil
}

// GetRoom returns one active room.
func (s *Service) GetRoom(ctx context.Context, roomID int64) (storage.RoomSummary, error) {
	room, err := s.requireActiveRoom(ctx, roomID)
	if err != nil {
		return storage.RoomSummary{}, err
	}
	members, err := s.store.ListMembers(ctx, roomID)
	if err != nil {
		return storage.RoomSummary{}, err
	}
	return storage.RoomSummary{Room: room, ParticipantCount: len(members)}, nil
}

// PublicRooms lists the newest public rooms.
func (s *Service) PublicRooms(ctx context.Context) ([]storage.RoomSummary, error) {
	return s.store.ListPublicRooms(ctx, s.cfg.PublicRoomsLimit)
}

// UserRooms lists the rooms userID belongs to.
func (s *Service) UserRooms(ctx context.Context, userID int64) ([]storage.RoomSummary, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListUserRooms(ctx, userID)
}

// JoinRoom adds userID to roomID, checking the password of protected rooms.
func (s *Service) JoinRoom(ctx context.Context, roomID int64, userID int64, password string) (storage.Room, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return storage.Room{}, err
	}
	room, err := s.requireActiveRoom(ctx, roomID)
	if err != nil {
		return storage.Room{}, err
	}
	if room.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(password)); err != nil {
			return storage.Room{}, apperrors.New(apperrors.CodeRoomPasswordMismatch, "room password mismatch")
		}
	}

	err = s.store.AddMember(ctx, roomID, userID, s.timestamp())
	switch {
	case errors.Is(err, storage.ErrAlreadyMember):
		return storage.Room{}, apperrors.New(apperrors.CodeRoomAlreadyMember, "already a member")
	case errors.Is(err, storage.ErrRoomFull):
		return storage.Room{}, apperrors.New(apperrors.CodeRoomFull, "room is full")
	case errors.Is(err, storage.ErrNotFound):
		return storage.Room{}, apperrors.New(apperrors.CodeRoomNotFound, "room not found")
	case err != nil:
		return storage.Room{}, err
	}
	s.logger.Info("room joined", zap.Int64("room_id", roomID), zap.Int64("user_id", userID))
	return room, nil
}

// LeaveRoom removes userID from roomID.
func (s *Service) LeaveRoom(ctx context.Context, roomID int64, userID int64) error {
	if err := validateID("room", roomID); err != nil {
		return err
	}
	if err := validateID("user", userID); err != nil {
		return err
	}
	err := s.store.RemoveMember(ctx, roomID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeRoomNotMember, "not a member")
	}
	if err != nil {
		return err
	}
	s.logger.Info("room left", zap.Int64("room_id", roomID), zap.Int64("user_id", userID))
	return nil
}

// Participants lists the members of roomID in join order.
func (s *Service) Participants(ctx context.Context, roomID int64) ([]storage.Member, error) {
	if _, err := s.requireActiveRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, roomID)
}
