package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/nois/internal/services/social/storage"
)

// DefaultMaxParticipants is applied to rooms created without a limit.
const DefaultMaxParticipants = 50

const roomColumns = `r.room_id, r.name, r.created_by, r.is_public, r.password_hash,
		        r.max_participants, r.is_active, r.created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateRoom inserts one room and returns it with its assigned id.
func (s *Store) CreateRoom(ctx context.Context, room storage.Room) (storage.Room, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Room{}, err
	}
	return insertRoom(ctx, s.sqlDB, room)
}

// CreateRoomWithOwner inserts one room and joins its creator in the same
// transaction, so a room never exists without its owner.
func (s *Store) CreateRoomWithOwner(ctx context.Context, room storage.Room) (storage.Room, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Room{}, err
	}
	if room.CreatedBy <= 0 {
		return storage.Room{}, fmt.Errorf("room owner is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Room{}, fmt.Errorf("create room: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created, err := insertRoom(ctx, tx, room)
	if err != nil {
		return storage.Room{}, err
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO room_members (room_id, user_id, joined_at) VALUES (?, ?, ?)`,
		created.RoomID,
		created.CreatedBy,
		toMillis(created.CreatedAt),
	); err != nil {
		return storage.Room{}, fmt.Errorf("create room: add owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Room{}, fmt.Errorf("create room: commit: %w", err)
	}
	return created, nil
}

func insertRoom(ctx context.Context, db execer, room storage.Room) (storage.Room, error) {
	room.Name = strings.TrimSpace(room.Name)
	if room.Name == "" {
		return storage.Room{}, fmt.Errorf("room name is required")
	}
	if room.MaxParticipants <= 0 {
		room.MaxParticipants = DefaultMaxParticipants
	}
	room.CreatedAt = room.CreatedAt.UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	room.IsActive = true

	result, err := db.ExecContext(
		ctx,
		`INSERT INTO rooms (name, created_by, is_public, password_hash, max_participants, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)`,
		room.Name,
		room.CreatedBy,
		boolToInt(room.IsPublic),
		room.PasswordHash,
		room.MaxParticipants,
		toMillis(room.CreatedAt),
	)
	if err != nil {
		return storage.Room{}, fmt.Errorf("create room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.Room{}, fmt.Errorf("create room: last insert id: %w", err)
	}
	room.RoomID = id
	room.CreatedAt = fromMillis(toMillis(room.CreatedAt))
	return room, nil
}

// GetRoom returns one room by id, active or not.
func (s *Store) GetRoom(ctx context.Context, roomID int64) (storage.Room, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Room{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+roomColumns+`
		   FROM rooms r
		  WHERE r.room_id = ?`,
		roomID,
	)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Room{}, storage.ErrNotFound
		}
		return storage.Room{}, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// ListPublicRooms returns up to limit active public rooms, newest first.
func (s *Store) ListPublicRooms(ctx context.Context, limit int) ([]storage.RoomSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+roomColumns+`,
		        (SELECT COUNT(*) FROM room_members m WHERE m.room_id = r.room_id)
		   FROM rooms r
		  WHERE r.is_public = 1 AND r.is_active = 1
		  ORDER BY r.created_at DESC, r.room_id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list public rooms: %w", err)
	}
	return collectSummaries(rows, "list public rooms")
}

// ListUserRooms returns the active rooms userID belongs to, most recently
// joined first.
func (s *Store) ListUserRooms(ctx context.Context, userID int64) ([]storage.RoomSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+roomColumns+`,
		        (SELECT COUNT(*) FROM room_members m WHERE m.room_id = r.room_id)
		   FROM rooms r
		   JOIN room_members mine ON mine.room_id = r.room_id
		  WHERE mine.user_id = ? AND r.is_active = 1
		  ORDER BY mine.joined_at DESC, r.room_id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user rooms: %w", err)
	}
	return collectSummaries(rows, "list user rooms")
}

// AddMember adds userID to an active room. The capacity check and the insert
// run as one statement.
func (s *Store) AddMember(ctx context.Context, roomID int64, userID int64, joinedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if joinedAt.IsZero() {
		joinedAt = time.Now()
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO room_members (room_id, user_id, joined_at)
		 SELECT r.room_id, ?, ?
		   FROM rooms r
		  WHERE r.room_id = ?
		    AND r.is_active = 1
		    AND (SELECT COUNT(*) FROM room_members m WHERE m.room_id = r.room_id) < r.max_participants`,
		userID,
		toMillis(joinedAt),
		roomID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyMember
		}
		return fmt.Errorf("add member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add member: rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsActive {
		return storage.ErrNotFound
	}
	member, err := s.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if member {
		return storage.ErrAlreadyMember
	}
	return storage.ErrRoomFull
}

// RemoveMember removes userID from roomID.
func (s *Store) RemoveMember(ctx context.Context, roomID int64, userID int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return requireAffected(result, "remove member")
}

// IsMember reports whether userID belongs to roomID.
func (s *Store) IsMember(ctx context.Context, roomID int64, userID int64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID,
		userID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return true, nil
}

// ListMembers returns the participants of roomID in join order.
func (s *Store) ListMembers(ctx context.Context, roomID int64) ([]storage.Member, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT m.room_id, m.user_id, u.nickname, u.color_hex, m.joined_at
		   FROM room_members m
		   JOIN users u ON u.user_id = m.user_id
		  WHERE m.room_id = ?
		  ORDER BY m.joined_at ASC, m.user_id ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []storage.Member
	for rows.Next() {
		var member storage.Member
		var joinedAt int64
		if err := rows.Scan(&member.RoomID, &member.UserID, &member.Nickname, &member.ColorHex, &joinedAt); err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		member.JoinedAt = fromMillis(joinedAt)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func scanRoom(row rowScanner, extra ...any) (storage.Room, error) {
	var room storage.Room
	var isPublic, isActive int
	var createdAt int64
	dest := []any{
		&room.RoomID,
		&room.Name,
		&room.CreatedBy,
		&isPublic,
		&room.PasswordHash,
		&room.MaxParticipants,
		&isActive,
		&createdAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return storage.Room{}, err
	}
	room.IsPublic = isPublic != 0
	room.IsActive = isActive != 0
	room.CreatedAt = fromMillis(createdAt)
	return room, nil
}

func collectSummaries(rows *sql.Rows, op string) ([]storage.RoomSummary, error) {
	defer rows.Close()
	var summaries []storage.RoomSummary
	for rows.Next() {
		var count int
		room, err := scanRoom(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		summaries = append(summaries, storage.RoomSummary{Room: room, ParticipantCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summaries, nil
}
