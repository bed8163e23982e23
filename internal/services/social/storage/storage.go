// Package storage defines persistence contracts for social service state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// ErrRoomFull indicates a room reached its participant limit.
var ErrRoomFull = errors.New("room is full")

// ErrAlreadyMember indicates the user already belongs to the room.
var ErrAlreadyMember = errors.New("already a room member")

// User is one anonymous chat profile keyed by the messenger account id.
type User struct {
	UserID      int64
	Nickname    string
	NicknameKey string
	ColorHex    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room is one group chat.
type Room struct {
	RoomID          int64
	Name            string
	CreatedBy       int64
	IsPublic        bool
	PasswordHash    string
	MaxParticipants int
	IsActive        bool
	CreatedAt       time.Time
}

// HasPassword reports whether joining requires a password.
func (r Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// RoomSummary is a room listed with its current participant count.
type RoomSummary struct {
	Room
	ParticipantCount int
}

// Member is one room participant.
type Member struct {
	RoomID   int64
	UserID   int64
	Nickname string
	ColorHex string
	JoinedAt time.Time
}

// Message is one chat message. Nickname and color are captured at send time.
type Message struct {
	MessageID    int64
	RoomID       int64
	UserID       int64
	Body         string
	UserNickname string
	UserColorHex string
	CreatedAt    time.Time
}

// UserStore persists user profiles.
type UserStore interface {
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID int64) (User, error)
	GetUserByNickname(ctx context.Context, nicknameKey string) (User, error)
	UpdateNickname(ctx context.Context, userID int64, nickname string, nicknameKey string, colorHex string, updatedAt time.Time) error
}

// RoomStore persists rooms and their memberships.
type RoomStore interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	// CreateRoomWithOwner creates room and adds room.CreatedBy as its first
	// member atomically.
	CreateRoomWithOwner(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, roomID int64) (Room, error)
	ListPublicRooms(ctx context.Context, limit int) ([]RoomSummary, error)
	AddMember(ctx context.Context, roomID int64, userID int64, joinedAt time.Time) error
	RemoveMember(ctx context.Context, roomID int64, userID int64) error
	IsMember(ctx context.Context, roomID int64, userID int64) (bool, error)
	ListMembers(ctx context.Context, roomID int64) ([]Member, error)
	ListUserRooms(ctx context.Context, userID int64) ([]RoomSummary, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, message Message) (Message, error)
	ListRoomMessages(ctx context.Context, roomID int64, limit int) ([]Message, error)
	DeleteUserMessages(ctx context.Context, userID int64) (int64, error)
}

// Store is the full social persistence surface.
type Store interface {
	UserStore
	RoomStore
	MessageStore
}
