package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/services/auth/storage"
	"github.com/taskdeck/taskdeck/internal/services/auth/user"
	appsqlite "github.com/taskdeck/taskdeck/internal/storage/sqlite"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	sqlDB, err := appsqlite.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB), sqlDB
}

func testUser(id, email string) user.User {
	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	return user.User{
		ID:        id,
		Email:     email,
		Name:      "Alice",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPutGetUserRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := testUser("user-1", "alice@example.com")
	if err := store.PutUser(ctx, want, "hash-1"); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != want {
		t.Fatalf("user = %+v, want %+v", got, want)
	}
}

func TestPutUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.PutUser(ctx, testUser("user-1", "alice@example.com"), "hash-1"); err != nil {
		t.Fatalf("put user: %v", err)
	}

	err := store.PutUser(ctx, testUser("user-2", "alice@example.com"), "hash-2")
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Fatalf("error = %v, want %v", err, storage.ErrEmailTaken)
	}
}

func TestGetCredential(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := testUser("user-1", "alice@example.com")
	if err := store.PutUser(ctx, want, "hash-1"); err != nil {
		t.Fatalf("put user: %v", err)
	}

	credential, err := store.GetCredential(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if credential.User != want {
		t.Fatalf("user = %+v, want %+v", credential.User, want)
	}
	if credential.PasswordHash != "hash-1" {
		t.Fatalf("hash = %q, want %q", credential.PasswordHash, "hash-1")
	}

	_, err = store.GetCredential(ctx, "unknown@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGetUserMissing(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, err := store.GetUser(context.Background(), "no-such-user")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDeleteUserCascadesToTasks(t *testing.T) {
	t.Parallel()
	store, sqlDB := newTestStore(t)
	ctx := context.Background()

	if err := store.PutUser(ctx, testUser("user-1", "alice@example.com"), "hash-1"); err != nil {
		t.Fatalf("put user: %v", err)
	}
	_, err := sqlDB.ExecContext(ctx, `
INSERT INTO tasks (id, owner_id, title, status, priority, created_at, updated_at)
VALUES ('task-1', 'user-1', 'Buy milk', 'todo', 'medium', 0, 0)
`)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}

	if err := store.DeleteUser(ctx, "user-1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var count int
	if err := sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE owner_id = 'user-1'").Scan(&count); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 0 {
		t.Fatalf("tasks after cascade = %d, want 0", count)
	}

	if err := store.DeleteUser(ctx, "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCountUsers(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	count, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	if err := store.PutUser(ctx, testUser("user-1", "alice@example.com"), "hash-1"); err != nil {
		t.Fatalf("put user: %v", err)
	}
	count, err = store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
