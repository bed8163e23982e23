package httpapi

import (
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/louisbranch/nois/internal/services/social/app"
)

type registerRequest struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

type suggestionsResponse struct {
	Nicknames []string `json:"nicknames"`
	Themes    []string `json:"themes"`
}

type purgeResponse struct {
	Deleted int64 `json:"deleted"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.social.Register(r.Context(), req.UserID, req.Nickname)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.social.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleChangeNickname(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req nicknameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.social.ChangeNickname(r.Context(), userID, req.Nickname)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	avatar, err := s.social.Avatar(r.Context(), userID, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.servePNG(w, r, avatar)
}

func (s *Server) handleNewLook(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	random, err := strconv.ParseBool(defaultString(r.URL.Query().Get("random"), "false"))
	if err != nil {
		s.writeError(w, r, invalidArgument("random must be a boolean"))
		return
	}
	avatar, err := s.social.NewLook(r.Context(), userID, random)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.servePNG(w, r, avatar)
}

// servePNG streams the avatar file with its color header.
func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, avatar app.Avatar) {
	f, err := os.Open(avatar.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set(AvatarColorHeader, avatar.ColorHex)
	http.ServeContent(w, r, "", info.ModTime(), f)
	s.logger.Debug("avatar served", zap.String("path", avatar.Path))
}

func (s *Server) handleUserRooms(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rooms, err := s.social.UserRooms(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomSummaries(rooms))
}

func (s *Server) handlePurgeMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted, err := s.social.PurgeMessages(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purgeResponse{Deleted: deleted})
}

func (s *Server) handleSuggestNicknames(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names, err := s.social.SuggestNicknames(count, r.URL.Query().Get("theme"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Nicknames: names, Themes: s.social.NicknameThemes()})
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
