// Package sqlite implements auth persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/services/auth/storage"
	"github.com/taskdeck/taskdeck/internal/services/auth/user"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements storage.UserStore over a shared SQLite handle.
type Store struct {
	sqlDB *sql.DB
}

// New wraps an open database handle.
//
// The handle is shared with task storage so the ownership foreign key lives
// in one schema; callers own its lifecycle.
func New(sqlDB *sql.DB) *Store {
	return &Store{sqlDB: sqlDB}
}

func (s *Store) PutUser(ctx context.Context, u user.User, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}

	var name sql.NullString
	if u.Name != "" {
		name = sql.NullString{String: u.Name, Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, u.ID, u.Email, passwordHash, name, toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		if isEmailUniqueViolation(err) {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, name, created_at, updated_at
FROM users
WHERE id = ?
`, userID)
	u, _, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetCredential(ctx context.Context, email string) (storage.Credential, error) {
	if err := ctx.Err(); err != nil {
		return storage.Credential{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Credential{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, name, created_at, updated_at, password_hash
FROM users
WHERE email = ?
`, email)
	u, hash, err := scanUserWithHash(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Credential{}, storage.ErrNotFound
		}
		return storage.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return storage.Credential{User: u, PasswordHash: hash}, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, string, error) {
	var (
		u         user.User
		name      sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &name, &createdAt, &updatedAt); err != nil {
		return user.User{}, "", err
	}
	u.Name = name.String
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, "", nil
}

func scanUserWithHash(row rowScanner) (user.User, string, error) {
	var (
		u         user.User
		name      sql.NullString
		createdAt int64
		updatedAt int64
		hash      string
	)
	if err := row.Scan(&u.ID, &u.Email, &name, &createdAt, &updatedAt, &hash); err != nil {
		return user.User{}, "", err
	}
	u.Name = name.String
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, hash, nil
}

// isEmailUniqueViolation reports whether err is the users.email unique
// constraint, the stable conflict signal behind DuplicateEmail.
func isEmailUniqueViolation(err error) bool {
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
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "users.email")
}

var _ storage.UserStore = (*Store)(nil)
