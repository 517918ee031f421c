package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/services/tasks/storage"
	"github.com/taskdeck/taskdeck/internal/services/tasks/task"
	appsqlite "github.com/taskdeck/taskdeck/internal/storage/sqlite"
)

var baseTime = time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, owners ...string) *Store {
	t.Helper()
	sqlDB, err := appsqlite.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, owner := range owners {
		insertOwner(t, sqlDB, owner)
	}
	return New(sqlDB)
}

func insertOwner(t *testing.T, sqlDB *sql.DB, ownerID string) {
	t.Helper()
	_, err := sqlDB.Exec(`
INSERT INTO users (id, email, password_hash, created_at, updated_at)
VALUES (?, ?, 'hash', 0, 0)
`, ownerID, ownerID+"@example.com")
	if err != nil {
		t.Fatalf("insert owner %s: %v", ownerID, err)
	}
}

func putTask(t *testing.T, store *Store, id, ownerID string, createdAt time.Time, mutate func(*task.Task)) task.Task {
	t.Helper()
	created := task.Task{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Task " + id,
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if mutate != nil {
		mutate(&created)
	}
	if err := store.PutTask(context.Background(), created); err != nil {
		t.Fatalf("put task %s: %v", id, err)
	}
	return created
}

func TestPutGetTaskRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1")
	ctx := context.Background()

	description := "2% from the corner store"
	dueDate := baseTime.Add(48 * time.Hour)
	want := putTask(t, store, "task-1", "user-1", baseTime, func(tk *task.Task) {
		tk.Description = &description
		tk.DueDate = &dueDate
	})

	got, err := store.GetTask(ctx, "user-1", "task-1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.ID != want.ID || got.Title != want.Title {
		t.Fatalf("task = %+v, want %+v", got, want)
	}
	if got.Description == nil || *got.Description != description {
		t.Fatalf("description = %v, want %q", got.Description, description)
	}
	if got.DueDate == nil || !got.DueDate.Equal(dueDate) {
		t.Fatalf("due date = %v, want %v", got.DueDate, dueDate)
	}
}

func TestGetTaskOwnershipIndistinguishable(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1", "user-2")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, nil)

	_, foreignErr := store.GetTask(ctx, "user-2", "task-1")
	_, missingErr := store.GetTask(ctx, "user-2", "no-such-task")

	if !errors.Is(foreignErr, storage.ErrNotFound) {
		t.Fatalf("foreign error = %v, want %v", foreignErr, storage.ErrNotFound)
	}
	if !errors.Is(missingErr, storage.ErrNotFound) {
		t.Fatalf("missing error = %v, want %v", missingErr, storage.ErrNotFound)
	}
	if foreignErr.Error() != missingErr.Error() {
		t.Fatalf("errors differ: %q vs %q", foreignErr.Error(), missingErr.Error())
	}
}

func TestListTasksOrderingAndPagination(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1")
	ctx := context.Background()

	// Two tasks share a created_at to exercise the insertion-order tie-break.
	putTask(t, store, "task-1", "user-1", baseTime, nil)
	putTask(t, store, "task-2", "user-1", baseTime.Add(time.Minute), nil)
	putTask(t, store, "task-3", "user-1", baseTime.Add(time.Minute), nil)

	page, err := store.ListTasks(ctx, "user-1", storage.Filter{}, 2, 0)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Total)
	}
	if len(page.Tasks) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Tasks))
	}
	if page.Tasks[0].ID != "task-3" || page.Tasks[1].ID != "task-2" {
		t.Fatalf("page ids = %s,%s, want task-3,task-2", page.Tasks[0].ID, page.Tasks[1].ID)
	}

	rest, err := store.ListTasks(ctx, "user-1", storage.Filter{}, 2, 2)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(rest.Tasks) != 1 || rest.Tasks[0].ID != "task-1" {
		t.Fatalf("second page = %+v, want task-1", rest.Tasks)
	}
}

func TestListTasksFilterConjunction(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, func(tk *task.Task) {
		tk.Status = task.StatusDone
		tk.Priority = task.PriorityHigh
	})
	putTask(t, store, "task-2", "user-1", baseTime, func(tk *task.Task) {
		tk.Status = task.StatusDone
	})
	putTask(t, store, "task-3", "user-1", baseTime, nil)

	done := task.StatusDone
	high := task.PriorityHigh

	page, err := store.ListTasks(ctx, "user-1", storage.Filter{Status: &done}, 20, 0)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("status total = %d, want 2", page.Total)
	}

	page, err = store.ListTasks(ctx, "user-1", storage.Filter{Status: &done, Priority: &high}, 20, 0)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.Total != 1 || len(page.Tasks) != 1 || page.Tasks[0].ID != "task-1" {
		t.Fatalf("conjunction page = %+v, want only task-1", page.Tasks)
	}
}

func TestListTasksNeverCrossesOwners(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1", "user-2")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		putTask(t, store, fmt.Sprintf("a-%d", i), "user-1", baseTime.Add(time.Duration(i)*time.Minute), nil)
		putTask(t, store, fmt.Sprintf("b-%d", i), "user-2", baseTime.Add(time.Duration(i)*time.Minute), nil)
	}

	page, err := store.ListTasks(ctx, "user-1", storage.Filter{}, 100, 0)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("total = %d, want 5", page.Total)
	}
	for _, found := range page.Tasks {
		if found.OwnerID != "user-1" {
			t.Fatalf("leaked task %s owned by %s", found.ID, found.OwnerID)
		}
	}
}

func TestUpdateTaskPartialFields(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, nil)

	done := task.StatusDone
	updatedAt := baseTime.Add(time.Hour)
	updated, err := store.UpdateTask(ctx, "user-1", "task-1", task.Patch{Status: &done}, updatedAt)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Status != task.StatusDone {
		t.Fatalf("status = %q, want %q", updated.Status, task.StatusDone)
	}
	if updated.Title != "Task task-1" {
		t.Fatalf("title = %q, want untouched title", updated.Title)
	}
	if updated.Priority != task.PriorityMedium {
		t.Fatalf("priority = %q, want untouched priority", updated.Priority)
	}
	if !updated.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("updated_at = %v, want %v", updated.UpdatedAt, updatedAt)
	}
	if !updated.CreatedAt.Equal(baseTime) {
		t.Fatalf("created_at = %v, want untouched %v", updated.CreatedAt, baseTime)
	}
}

func TestUpdateTaskEmptyPatchRefreshesUpdatedAt(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, nil)

	updatedAt := baseTime.Add(time.Hour)
	updated, err := store.UpdateTask(ctx, "user-1", "task-1", task.Patch{}, updatedAt)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !updated.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("updated_at = %v, want %v", updated.UpdatedAt, updatedAt)
	}
}

func TestUpdateTaskOwnershipIndistinguishable(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1", "user-2")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, nil)

	done := task.StatusDone
	_, foreignErr := store.UpdateTask(ctx, "user-2", "task-1", task.Patch{Status: &done}, baseTime)
	_, missingErr := store.UpdateTask(ctx, "user-2", "no-such-task", task.Patch{Status: &done}, baseTime)

	if !errors.Is(foreignErr, storage.ErrNotFound) || !errors.Is(missingErr, storage.ErrNotFound) {
		t.Fatalf("errors = %v / %v, want %v", foreignErr, missingErr, storage.ErrNotFound)
	}

	// The foreign attempt must not have mutated the row.
	got, err := store.GetTask(ctx, "user-1", "task-1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != task.StatusTodo {
		t.Fatalf("status = %q, want untouched %q", got.Status, task.StatusTodo)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, nil)

	if err := store.DeleteTask(ctx, "user-1", "task-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.DeleteTask(ctx, "user-1", "task-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDeleteTaskForeignOwner(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, "user-1", "user-2")
	ctx := context.Background()

	putTask(t, store, "task-1", "user-1", baseTime, nil)

	if err := store.DeleteTask(ctx, "user-2", "task-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetTask(ctx, "user-1", "task-1"); err != nil {
		t.Fatalf("task should survive foreign delete: %v", err)
	}
}
