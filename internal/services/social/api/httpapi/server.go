// Package httpapi exposes the social service over JSON HTTP, with avatars
// served as PNG bodies.
package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/louisbranch/nois/internal/services/social/app"
)

// AvatarColorHeader carries the primary color of a served avatar.
const AvatarColorHeader = "X-Avatar-Color"

// Server routes HTTP requests to the social service.
type Server struct {
	social *app.Service
	health func(context.Context) error
	logger *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthCheck sets the probe run by /healthz.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

// NewServer builds an HTTP server for social.
func NewServer(social *app.Service, opts ...Option) *Server {
	s := &Server{social: social, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes registers the API endpoints on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /v1/users", s.handleRegister)
	mux.HandleFunc("GET /v1/users/{id}", s.handleProfile)
	mux.HandleFunc("PUT /v1/users/{id}/nickname", s.handleChangeNickname)
	mux.HandleFunc("GET /v1/users/{id}/avatar", s.handleAvatar)
	mux.HandleFunc("POST /v1/users/{id}/avatar", s.handleNewLook)
	mux.HandleFunc("GET /v1/users/{id}/rooms", s.handleUserRooms)
	mux.HandleFunc("DELETE /v1/users/{id}/messages", s.handlePurgeMessages)
	mux.HandleFunc("GET /v1/nicknames", s.handleSuggestNicknames)

	mux.HandleFunc("POST /v1/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /v1/rooms", s.handlePublicRooms)
	mux.HandleFunc("GET /v1/rooms/{id}", s.handleRoom)
	mux.HandleFunc("POST /v1/rooms/{id}/members", s.handleJoinRoom)
	mux.HandleFunc("DELETE /v1/rooms/{id}/members/{user}", s.handleLeaveRoom)
	mux.HandleFunc("GET /v1/rooms/{id}/members", s.handleParticipants)
	mux.HandleFunc("POST /v1/rooms/{id}/messages", s.handlePostMessage)
	mux.HandleFunc("GET /v1/rooms/{id}/messages", s.handleHistory)
}

// Handler returns every route behind request identification and logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.withRequestLog(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
