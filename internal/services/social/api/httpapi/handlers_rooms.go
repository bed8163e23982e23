package httpapi

import (
	"net/http"

	"github.com/louisbranch/nois/internal/services/social/app"
)

type createRoomRequest struct {
	UserID          int64  `json:"user_id"`
	Name            string `json:"name"`
	IsPublic        bool   `json:"public"`
	Password        string `json:"password"`
	MaxParticipants int    `json:"max_participants"`
}

type joinRoomRequest struct {
	UserID   int64  `json:"user_id"`
	Password string `json:"password"`
}

type postMessageRequest struct {
	UserID int64  `json:"user_id"`
	Body   string `json:"body"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.social.CreateRoom(r.Context(), req.UserID, app.CreateRoomInput{
		Name:            req.Name,
		IsPublic:        req.IsPublic,
		Password:        req.Password,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (s *Server) handlePublicRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.social.PublicRooms(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomSummaries(rooms))
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.social.GetRoom(r.Context(), roomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := toRoomResponse(summary.Room)
	resp.ParticipantCount = &summary.ParticipantCount
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req joinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.social.JoinRoom(r.Context(), roomID, req.UserID, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "user")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.social.LeaveRoom(r.Context(), roomID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	members, err := s.social.Participants(r.Context(), roomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembers(members))
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	message, err := s.social.PostMessage(r.Context(), roomID, req.UserID, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessage(message))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	messages, err := s.social.History(r.Context(), roomID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessages(messages))
}
