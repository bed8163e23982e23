package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
	"github.com/louisbranch/nois/internal/platform/requestctx"
	"github.com/louisbranch/nois/internal/services/social/app"
	"github.com/louisbranch/nois/internal/services/social/storage"
)

// maxBodyBytes bounds JSON request bodies; the longest legal body is a
// message of a few thousand runes.
const maxBodyBytes = 64 << 10

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type avatarResponse struct {
	URL      string `json:"url"`
	ColorHex string `json:"color"`
}

type profileResponse struct {
	UserID    int64           `json:"user_id"`
	Nickname  string          `json:"nickname"`
	ColorHex  string          `json:"color"`
	Avatar    *avatarResponse `json:"avatar,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type roomResponse struct {
	RoomID           int64     `json:"room_id"`
	Name             string    `json:"name"`
	CreatedBy        int64     `json:"created_by"`
	IsPublic         bool      `json:"public"`
	HasPassword      bool      `json:"has_password"`
	MaxParticipants  int       `json:"max_participants"`
	ParticipantCount *int      `json:"participant_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type memberResponse struct {
	UserID   int64     `json:"user_id"`
	Nickname string    `json:"nickname"`
	ColorHex string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

type messageResponse struct {
	MessageID int64     `json:"message_id"`
	RoomID    int64     `json:"room_id"`
	UserID    int64     `json:"user_id"`
	Nickname  string    `json:"nickname"`
	ColorHex  string    `json:"color"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func avatarURL(userID int64) string {
	return "/v1/users/" + strconv.FormatInt(userID, 10) + "/avatar"
}

func toProfileResponse(profile app.Profile) profileResponse {
	resp := profileResponse{
		UserID:    profile.User.UserID,
		Nickname:  profile.User.Nickname,
		ColorHex:  profile.User.ColorHex,
		CreatedAt: profile.User.CreatedAt,
		UpdatedAt: profile.User.UpdatedAt,
	}
	if profile.Avatar != nil {
		resp.Avatar = &avatarResponse{URL: avatarURL(profile.User.UserID), ColorHex: profile.Avatar.ColorHex}
	}
	return resp
}

func toRoomResponse(room storage.Room) roomResponse {
	return roomResponse{
		RoomID:          room.RoomID,
		Name:            room.Name,
		CreatedBy:       room.CreatedBy,
		IsPublic:        room.IsPublic,
		HasPassword:     room.HasPassword(),
		MaxParticipants: room.MaxParticipants,
		CreatedAt:       room.CreatedAt,
	}
}

func toRoomSummaries(rooms []storage.RoomSummary) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for _, summary := range rooms {
		resp := toRoomResponse(summary.Room)
		count := summary.ParticipantCount
		resp.ParticipantCount = &count
		out = append(out, resp)
	}
	return out
}

func toMembers(members []storage.Member) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{UserID: m.UserID, Nickname: m.Nickname, ColorHex: m.ColorHex, JoinedAt: m.JoinedAt})
	}
	return out
}

func toMessage(m storage.Message) messageResponse {
	return messageResponse{
		MessageID: m.MessageID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Nickname:  m.UserNickname,
		ColorHex:  m.UserColorHex,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func toMessages(messages []storage.Message) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessage(m))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

// writeError renders err with the status of its code and a message localised
// for the request's Accept-Language.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", requestctx.RequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: apperrors.Localize(err, r.Header.Get("Accept-Language")),
	}})
}

func invalidArgument(reason string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument, reason, map[string]string{"Reason": reason})
}

// decodeJSON reads a single JSON object from the request body into target.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidArgument("request body is empty")
		}
		return invalidArgument("malformed JSON body")
	}
	return nil
}

// pathID parses the positive integer path value name.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidArgument(name + " must be a positive integer")
	}
	return id, nil
}

// queryInt parses the optional integer query parameter name, returning zero
// when it is absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidArgument(name + " must be an integer")
	}
	return value, nil
}
