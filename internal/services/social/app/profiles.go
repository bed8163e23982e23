package app

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
	"github.com/louisbranch/nois/internal/services/avatars"
	"github.com/louisbranch/nois/internal/services/social/nickname"
	"github.com/louisbranch/nois/internal/services/social/storage"
)

// Avatar locates a rendered profile picture.
type Avatar struct {
	Path     string
	ColorHex string
}

// Profile is a user with its avatar. Avatar is nil when the picture could
// not be produced; the profile is then shown as text only.
type Profile struct {
	User   storage.User
	Avatar *Avatar
}

func avatarFrom(res avatars.Result) *Avatar {
	return &Avatar{Path: res.Path, ColorHex: res.Color.Hex()}
}

// Register creates the profile of userID. A blank nickname is replaced by a
// generated one.
func (s *Service) Register(ctx context.Context, userID int64, requested string) (Profile, error) {
	if err := validateID("user", userID); err != nil {
		return Profile{}, err
	}
	if _, err := s.store.GetUser(ctx, userID); err == nil {
		return Profile{}, apperrors.New(apperrors.CodeUserAlreadyRegistered, "user already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Profile{}, err
	}

	nick, err := s.chooseNickname(ctx, requested)
	if err != nil {
		return Profile{}, err
	}

	now := s.timestamp()
	user := storage.User{
		UserID:      userID,
		Nickname:    nick.Display,
		NicknameKey: nick.Key,
		ColorHex:    s.avatars.Color(nick.Display).Hex(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			if _, getErr := s.store.GetUser(ctx, userID); getErr == nil {
				return Profile{}, apperrors.New(apperrors.CodeUserAlreadyRegistered, "user already registered")
			}
			return Profile{}, nicknameTaken(nick.Display)
		}
		return Profile{}, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", userID), zap.String("nickname", nick.Display))

	return s.profileOf(ctx, user), nil
}

// chooseNickname validates requested, or generates a free nickname when it
// is blank.
func (s *Service) chooseNickname(ctx context.Context, requested string) (nickname.Nickname, error) {
	if requested != "" {
		nick, err := nickname.Canonicalize(requested)
		if err != nil {
			return nickname.Nickname{}, err
		}
		if err := s.ensureNicknameFree(ctx, nick, 0); err != nil {
			return nickname.Nickname{}, err
		}
		return nick, nil
	}

	var last nickname.Nickname
	for range nicknameAttempts {
		nick, err := nickname.Canonicalize(s.nicknames.Generate())
		if err != nil {
			return nickname.Nickname{}, err
		}
		last = nick
		if err := s.ensureNicknameFree(ctx, nick, 0); err == nil {
			return nick, nil
		} else if !apperrors.HasCode(err, apperrors.CodeNicknameTaken) {
			return nickname.Nickname{}, err
		}
	}
	return nickname.Nickname{}, nicknameTaken(last.Display)
}

// ensureNicknameFree fails when nick belongs to a user other than owner.
func (s *Service) ensureNicknameFree(ctx context.Context, nick nickname.Nickname, owner int64) error {
	holder, err := s.store.GetUserByNickname(ctx, nick.Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return err
	case holder.UserID == owner:
		return nil
	default:
		return nicknameTaken(nick.Display)
	}
}

func nicknameTaken(display string) error {
	return apperrors.WithMetadata(apperrors.CodeNicknameTaken, "nickname "+display+" taken",
		map[string]string{"Nickname": display})
}

// Profile returns the profile of userID with its cached avatar.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.profileOf(ctx, user), nil
}

// profileOf attaches the deterministic avatar of user, degrading to a
// text-only profile when it cannot be produced.
func (s *Service) profileOf(ctx context.Context, user storage.User) Profile {
	res, err := s.avatars.GetOrCreate(ctx, user.Nickname, s.cfg.AvatarSize, false)
	if err != nil {
		s.logger.Warn("avatar unavailable, serving text profile",
			zap.Int64("user_id", user.UserID),
			zap.Error(err),
		)
		return Profile{User: user}
	}
	return Profile{User: user, Avatar: avatarFrom(res)}
}

// ChangeNickname replaces the nickname of userID. The profile color follows
// the new nickname.
func (s *Service) ChangeNickname(ctx context.Context, userID int64, requested string) (Profile, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	nick, err := nickname.Canonicalize(requested)
	if err != nil {
		return Profile{}, err
	}
	if err := s.ensureNicknameFree(ctx, nick, userID); err != nil {
		return Profile{}, err
	}

	colorHex := s.avatars.Color(nick.Display).Hex()
	now := s.timestamp()
	err = s.store.UpdateNickname(ctx, userID, nick.Display, nick.Key, colorHex, now)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return Profile{}, nicknameTaken(nick.Display)
	case errors.Is(err, storage.ErrNotFound):
		return Profile{}, apperrors.New(apperrors.CodeUserNotFound, "user "+strconv.FormatInt(userID, 10)+" not found")
	case err != nil:
		return Profile{}, err
	}
	s.logger.Info("nickname changed",
		zap.Int64("user_id", userID),
		zap.String("from", user.Nickname),
		zap.String("to", nick.Display),
	)

	user.Nickname = nick.Display
	user.NicknameKey = nick.Key
	user.ColorHex = colorHex
	user.UpdatedAt = now
	return s.profileOf(ctx, user), nil
}

// Avatar returns the deterministic avatar of userID at size. A zero size
// selects the configured profile size.
func (s *Service) Avatar(ctx context.Context, userID int64, size int) (Avatar, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return Avatar{}, err
	}
	if size == 0 {
		size = s.cfg.AvatarSize
	}
	res, err := s.avatars.GetOrCreate(ctx, user.Nickname, size, false)
	if err != nil {
		return Avatar{}, err
	}
	return *avatarFrom(res), nil
}

// NewLook renders a fresh avatar for userID: a regenerated deterministic one,
// or a one-off randomized one when random is set.
func (s *Service) NewLook(ctx context.Context, userID int64, random bool) (Avatar, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return Avatar{}, err
	}
	var res avatars.Result
	if random {
		res, err = s.avatars.CreateRandomized(ctx, user.Nickname, s.cfg.AvatarSize)
	} else {
		res, err = s.avatars.GetOrCreate(ctx, user.Nickname, s.cfg.AvatarSize, true)
	}
	if err != nil {
		return Avatar{}, err
	}
	return *avatarFrom(res), nil
}

// SuggestNicknames proposes count nicknames of theme.
func (s *Service) SuggestNicknames(count int, theme string) ([]string, error) {
	return s.nicknames.Suggest(count, theme)
}

// NicknameThemes lists the accepted suggestion themes.
func (s *Service) NicknameThemes() []string {
	return s.nicknames.Themes()
}
