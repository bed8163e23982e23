package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	msqlite "modernc.org/sqlite"

	"github.com/louisbranch/nois/internal/services/social/storage"
)

type opaqueWrapError struct {
	cause error
}

func (e opaqueWrapError) Error() string {
	return "wrapped database error"
}

func (e opaqueWrapError) Unwrap() error {
	return e.cause
}

type asSQLiteErrorWithUniqueMessage struct{}

func (e asSQLiteErrorWithUniqueMessage) Error() string {
	return "UNIQUE constraint failed: users.nickname_key"
}

func (e asSQLiteErrorWithUniqueMessage) As(target any) bool {
	sqliteErrPtr, ok := target.(**msqlite.Error)
	if !ok {
		return false
	}
	// Zero value mimics an unexpected/non-unique code while preserving typed matching.
	*sqliteErrPtr = &msqlite.Error{}
	return true
}

var baseTime = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir() + "/social.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, id int64, nickname string) storage.User {
	t.Helper()
	user := storage.User{
		UserID:      id,
		Nickname:    nickname,
		NicknameKey: nickname,
		ColorHex:    "#667eea",
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
	if err := store.PutUser(context.Background(), user); err != nil {
		t.Fatalf("put user %d: %v", id, err)
	}
	return user
}

func seedRoom(t *testing.T, store *Store, owner int64, name string, capacity int, public bool, at time.Time) storage.Room {
	t.Helper()
	room, err := store.CreateRoom(context.Background(), storage.Room{
		Name:            name,
		CreatedBy:       owner,
		IsPublic:        public,
		MaxParticipants: capacity,
		CreatedAt:       at,
	})
	if err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}
	return room
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestUserRoundTripAndLookup(t *testing.T) {
	store := openStore(t)
	want := seedUser(t, store, 1001, "neonfox")

	got, err := store.GetUser(context.Background(), 1001)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}

	byNick, err := store.GetUserByNickname(context.Background(), "neonfox")
	if err != nil {
		t.Fatalf("get user by nickname: %v", err)
	}
	if byNick.UserID != 1001 {
		t.Fatalf("user_id = %d, want 1001", byNick.UserID)
	}
}

func TestPutUserConflicts(t *testing.T) {
	store := openStore(t)
	seedUser(t, store, 1, "taken")

	err := store.PutUser(context.Background(), storage.User{UserID: 2, Nickname: "Taken", NicknameKey: "taken"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("nickname conflict err = %v, want %v", err, storage.ErrAlreadyExists)
	}
	err = store.PutUser(context.Background(), storage.User{UserID: 1, Nickname: "other", NicknameKey: "other"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("id conflict err = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestUpdateNickname(t *testing.T) {
	store := openStore(t)
	seedUser(t, store, 1, "first")
	seedUser(t, store, 2, "second")
	ctx := context.Background()
	later := baseTime.Add(time.Hour)

	if err := store.UpdateNickname(ctx, 1, "Renamed", "renamed", "#f093fb", later); err != nil {
		t.Fatalf("update nickname: %v", err)
	}
	got, err := store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Nickname != "Renamed" || got.ColorHex != "#f093fb" {
		t.Fatalf("user = %+v, want Renamed/#f093fb", got)
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(baseTime) {
		t.Fatalf("timestamps = %v/%v", got.CreatedAt, got.UpdatedAt)
	}

	if err := store.UpdateNickname(ctx, 1, "second", "second", "#000000", later); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("conflict err = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if err := store.UpdateNickname(ctx, 99, "ghost", "ghost", "#000000", later); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestUserGetNotFound(t *testing.T) {
	store := openStore(t)

	if _, err := store.GetUser(context.Background(), 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get by id err = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetUserByNickname(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get by nickname err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	store := openStore(t)
	seedUser(t, store, 1, "owner")

	room := seedRoom(t, store, 1, "  lobby ", 0, true, baseTime)
	if room.RoomID == 0 {
		t.Fatal("expected assigned room id")
	}
	if room.Name != "lobby" || room.MaxParticipants != DefaultMaxParticipants || !room.IsActive {
		t.Fatalf("room = %+v", room)
	}

	got, err := store.GetRoom(context.Background(), room.RoomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if diff := cmp.Diff(room, got); diff != "" {
		t.Fatalf("room mismatch (-want +got):\n%s", diff)
	}
	if _, err := store.GetRoom(context.Background(), room.RoomID+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing room err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateRoomWithOwnerJoinsCreator(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seedUser(t, store, 1, "owner")

	room, err := store.CreateRoomWithOwner(ctx, storage.Room{Name: "den", CreatedBy: 1, IsPublic: true, CreatedAt: baseTime})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	members, err := store.ListMembers(ctx, room.RoomID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != 1 || !members[0].JoinedAt.Equal(baseTime) {
		t.Fatalf("members = %+v, want owner joined at %v", members, baseTime)
	}
	if _, err := store.CreateRoomWithOwner(ctx, storage.Room{Name: "orphan"}); err == nil {
		t.Fatal("expected error without owner")
	}
}

func TestCreateRoomWithOwnerRollsBackRoom(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seedUser(t, store, 1, "owner")
	if _, err := store.sqlDB.ExecContext(ctx, `CREATE TRIGGER reject_members BEFORE INSERT ON room_members
		BEGIN SELECT RAISE(ABORT, 'members closed'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := store.CreateRoomWithOwner(ctx, storage.Room{Name: "den", CreatedBy: 1, IsPublic: true, CreatedAt: baseTime}); err == nil {
		t.Fatal("expected owner insert to fail")
	}
	var rooms int
	if err := store.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&rooms); err != nil {
		t.Fatalf("count rooms: %v", err)
	}
	if rooms != 0 {
		t.Fatalf("rooms = %d, want 0 after rollback", rooms)
	}
}

func TestMembershipLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seedUser(t, store, 1, "owner")
	seedUser(t, store, 2, "guest")
	seedUser(t, store, 3, "late")
	room := seedRoom(t, store, 1, "pair", 2, true, baseTime)

	if err := store.AddMember(ctx, room.RoomID, 1, baseTime); err != nil {
		t.Fatalf("add owner: %v", err)
	}
	if err := store.AddMember(ctx, room.RoomID, 1, baseTime); !errors.Is(err, storage.ErrAlreadyMember) {
		t.Fatalf("re-add err = %v, want %v", err, storage.ErrAlreadyMember)
	}
	if err := store.AddMember(ctx, room.RoomID, 2, baseTime.Add(time.Minute)); err != nil {
		t.Fatalf("add guest: %v", err)
	}
	if err := store.AddMember(ctx, room.RoomID, 3, baseTime); !errors.Is(err, storage.ErrRoomFull) {
		t.Fatalf("full room err = %v, want %v", err, storage.ErrRoomFull)
	}
	if err := store.AddMember(ctx, room.RoomID, 2, baseTime); !errors.Is(err, storage.ErrAlreadyMember) {
		t.Fatalf("member of full room err = %v, want %v", err, storage.ErrAlreadyMember)
	}
	if err := store.AddMember(ctx, room.RoomID+50, 3, baseTime); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing room err = %v, want %v", err, storage.ErrNotFound)
	}

	members, err := store.ListMembers(ctx, room.RoomID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].Nickname != "owner" || members[1].Nickname != "guest" {
		t.Fatalf("members = %+v", members)
	}

	ok, err := store.IsMember(ctx, room.RoomID, 2)
	if err != nil || !ok {
		t.Fatalf("IsMember(2) = %v, %v", ok, err)
	}
	if err := store.RemoveMember(ctx, room.RoomID, 2); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if err := store.RemoveMember(ctx, room.RoomID, 2); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second remove err = %v, want %v", err, storage.ErrNotFound)
	}
	ok, err = store.IsMember(ctx, room.RoomID, 2)
	if err != nil || ok {
		t.Fatalf("IsMember(2) after remove = %v, %v", ok, err)
	}
	if err := store.AddMember(ctx, room.RoomID, 3, baseTime); err != nil {
		t.Fatalf("add after leave: %v", err)
	}
}

func TestListPublicAndUserRooms(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seedUser(t, store, 1, "owner")
	older := seedRoom(t, store, 1, "older", 10, true, baseTime)
	newer := seedRoom(t, store, 1, "newer", 10, true, baseTime.Add(time.Hour))
	hidden := seedRoom(t, store, 1, "hidden", 10, false, baseTime.Add(2*time.Hour))

	if err := store.AddMember(ctx, older.RoomID, 1, baseTime); err != nil {
		t.Fatalf("join older: %v", err)
	}
	if err := store.AddMember(ctx, hidden.RoomID, 1, baseTime.Add(time.Minute)); err != nil {
		t.Fatalf("join hidden: %v", err)
	}

	public, err := store.ListPublicRooms(ctx, 20)
	if err != nil {
		t.Fatalf("list public rooms: %v", err)
	}
	if len(public) != 2 || public[0].RoomID != newer.RoomID || public[1].RoomID != older.RoomID {
		t.Fatalf("public rooms = %+v", public)
	}
	if public[1].ParticipantCount != 1 || public[0].ParticipantCount != 0 {
		t.Fatalf("participant counts = %d/%d", public[0].ParticipantCount, public[1].ParticipantCount)
	}

	limited, err := store.ListPublicRooms(ctx, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited len = %d, want 1", len(limited))
	}

	mine, err := store.ListUserRooms(ctx, 1)
	if err != nil {
		t.Fatalf("list user rooms: %v", err)
	}
	if len(mine) != 2 || mine[0].RoomID != hidden.RoomID || mine[1].RoomID != older.RoomID {
		t.Fatalf("user rooms = %+v", mine)
	}
}

func TestMessagesHistoryAndPurge(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seedUser(t, store, 1, "alice")
	seedUser(t, store, 2, "bob")
	room := seedRoom(t, store, 1, "chat", 10, true, baseTime)

	bodies := []string{"one", "two", "three", "four"}
	for i, body := range bodies {
		author := int64(1 + i%2)
		msg, err := store.CreateMessage(ctx, storage.Message{
			RoomID:       room.RoomID,
			UserID:       author,
			Body:         body,
			UserNickname: "nick",
			UserColorHex: "#123456",
			CreatedAt:    baseTime.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("create message %q: %v", body, err)
		}
		if msg.MessageID == 0 {
			t.Fatal("expected assigned message id")
		}
	}

	latest, err := store.ListRoomMessages(ctx, room.RoomID, 3)
	if err != nil {
		t.Fatalf("list room messages: %v", err)
	}
	var got []string
	for _, msg := range latest {
		got = append(got, msg.Body)
	}
	if diff := cmp.Diff([]string{"two", "three", "four"}, got); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	deleted, err := store.DeleteUserMessages(ctx, 1)
	if err != nil {
		t.Fatalf("delete user messages: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	deleted, err = store.DeleteUserMessages(ctx, 1)
	if err != nil || deleted != 0 {
		t.Fatalf("second purge = %d, %v; want 0, nil", deleted, err)
	}

	if _, err := store.CreateMessage(ctx, storage.Message{RoomID: room.RoomID, UserID: 1, Body: "  "}); err == nil {
		t.Fatal("expected blank body to be rejected")
	}
}

func TestIsUniqueViolationUsesSQLiteErrorCode(t *testing.T) {
	store := openStore(t)
	seedUser(t, store, 1, "alice")

	_, err := store.sqlDB.ExecContext(
		context.Background(),
		`INSERT INTO users (user_id, nickname, nickname_key, color_hex, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		2, "Alice", "alice", "#000000", baseTime.UnixMilli(), baseTime.UnixMilli(),
	)
	if err == nil {
		t.Fatal("expected unique constraint error")
	}

	wrapped := opaqueWrapError{cause: err}
	if !isUniqueViolation(wrapped) {
		t.Fatalf("isUniqueViolation(%T) = false, want true", wrapped)
	}
}

func TestIsUniqueViolationFallsBackToMessageWhenSQLiteCodeIsUnexpected(t *testing.T) {
	err := asSQLiteErrorWithUniqueMessage{}
	if !isUniqueViolation(err) {
		t.Fatalf("isUniqueViolation(%T) = false, want true", err)
	}
	if isUniqueViolation(nil) {
		t.Fatal("isUniqueViolation(nil) = true, want false")
	}
}

func TestCancelledContext(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetUser(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
