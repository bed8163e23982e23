// Package sqlite provides a SQLite-backed social storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	sqlitemigrate "github.com/louisbranch/nois/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/nois/internal/services/social/storage"
	"github.com/louisbranch/nois/internal/services/social/storage/sqlite/migrations"
)

// Store persists users, rooms and messages in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// Open opens a SQLite social store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutUser inserts one user profile.
func (s *Store) PutUser(ctx context.Context, user storage.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if user.UserID == 0 {
		return fmt.Errorf("user id is required")
	}
	nickname := strings.TrimSpace(user.Nickname)
	nicknameKey := strings.TrimSpace(user.NicknameKey)
	if nickname == "" || nicknameKey == "" {
		return fmt.Errorf("nickname is required")
	}
	createdAt := user.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := user.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (user_id, nickname, nickname_key, color_hex, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID,
		nickname,
		nicknameKey,
		strings.TrimSpace(user.ColorHex),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser returns one user by id.
func (s *Store) GetUser(ctx context.Context, userID int64) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, nickname, nickname_key, color_hex, created_at, updated_at
		   FROM users
		  WHERE user_id = ?`,
		userID,
	)
	return scanUser(row, "get user")
}

// GetUserByNickname returns the user holding nicknameKey.
func (s *Store) GetUserByNickname(ctx context.Context, nicknameKey string) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	nicknameKey = strings.TrimSpace(nicknameKey)
	if nicknameKey == "" {
		return storage.User{}, fmt.Errorf("nickname is required")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, nickname, nickname_key, color_hex, created_at, updated_at
		   FROM users
		  WHERE nickname_key = ?`,
		nicknameKey,
	)
	return scanUser(row, "get user by nickname")
}

// UpdateNickname replaces the nickname and color of one user.
func (s *Store) UpdateNickname(ctx context.Context, userID int64, nickname string, nicknameKey string, colorHex string, updatedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	nickname = strings.TrimSpace(nickname)
	nicknameKey = strings.TrimSpace(nicknameKey)
	if nickname == "" || nicknameKey == "" {
		return fmt.Errorf("nickname is required")
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users
		    SET nickname = ?, nickname_key = ?, color_hex = ?, updated_at = ?
		  WHERE user_id = ?`,
		nickname,
		nicknameKey,
		strings.TrimSpace(colorHex),
		toMillis(updatedAt),
		userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update nickname: %w", err)
	}
	return requireAffected(result, "update nickname")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, op string) (storage.User, error) {
	var user storage.User
	var createdAt, updatedAt int64
	err := row.Scan(
		&user.UserID,
		&user.Nickname,
		&user.NicknameKey,
		&user.ColorHex,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

// requireAffected maps a zero-row write to ErrNotFound.
func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
