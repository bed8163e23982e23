// Package app implements the social use cases: anonymous profiles with
// generated avatars, rooms and room messages.
package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
	"github.com/louisbranch/nois/internal/services/avatars"
	"github.com/louisbranch/nois/internal/services/avatars/palette"
	"github.com/louisbranch/nois/internal/services/social/nickname"
	"github.com/louisbranch/nois/internal/services/social/storage"
)

// Defaults applied to zero Config fields.
const (
	DefaultAvatarSize       = 512
	DefaultHistoryLimit     = 50
	DefaultPublicRoomsLimit = 20
	MaxHistoryLimit         = 200
	MaxRoomParticipants     = 200
	MinRoomParticipants     = 2
	MaxRoomNameLength       = 64
	MaxMessageLength        = 2000

	// nicknameAttempts bounds generation retries when a generated nickname is
	// already taken.
	nicknameAttempts = 8
)

// Avatars produces profile pictures.
type Avatars interface {
	GetOrCreate(ctx context.Context, identity string, size int, forceRegenerate bool) (avatars.Result, error)
	CreateRandomized(ctx context.Context, identity string, size int) (avatars.Result, error)
	Color(identity string) palette.Color
}

// Config tunes the social service.
type Config struct {
	AvatarSize       int
	HistoryLimit     int
	PublicRoomsLimit int
	// PasswordCost is the bcrypt cost for room passwords. Zero selects
	// bcrypt.DefaultCost.
	PasswordCost int
}

func (c Config) withDefaults() Config {
	if c.AvatarSize <= 0 {
		c.AvatarSize = DefaultAvatarSize
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	c.HistoryLimit = min(c.HistoryLimit, MaxHistoryLimit)
	if c.PublicRoomsLimit <= 0 {
		c.PublicRoomsLimit = DefaultPublicRoomsLimit
	}
	return c
}

// Service runs social use cases against a store.
type Service struct {
	store     storage.Store
	avatars   Avatars
	nicknames *nickname.Generator
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNicknames replaces the nickname generator.
func WithNicknames(g *nickname.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.nicknames = g
		}
	}
}

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a social service.
func NewService(store storage.Store, avatarService Avatars, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("social store is required")
	}
	if avatarService == nil {
		return nil, errors.New("avatar service is required")
	}
	s := &Service{
		store:     store,
		avatars:   avatarService,
		nicknames: nickname.New(),
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AvatarSize is the edge size of profile avatars.
func (s *Service) AvatarSize() int {
	return s.cfg.AvatarSize
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func validateID(kind string, id int64) error {
	if id <= 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidArgument, kind+" id must be positive",
			map[string]string{"Reason": kind + " id must be positive"})
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) (storage.User, error) {
	if err := validateID("user", userID); err != nil {
		return storage.User{}, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, apperrors.New(apperrors.CodeUserNotFound, "user "+strconv.FormatInt(userID, 10)+" not found")
	}
	if err != nil {
		return storage.User{}, err
	}
	return user, nil
}

func (s *Service) requireActiveRoom(ctx context.Context, roomID int64) (storage.Room, error) {
	if err := validateID("room", roomID); err != nil {
		return storage.Room{}, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !room.IsActive) {
		return storage.Room{}, apperrors.New(apperrors.CodeRoomNotFound, "room "+strconv.FormatInt(roomID, 10)+" not found")
	}
	if err != nil {
		return storage.Room{}, err
	}
	return room, nil
}
