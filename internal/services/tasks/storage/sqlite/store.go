// Package sqlite implements task persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/services/tasks/storage"
	"github.com/taskdeck/taskdeck/internal/services/tasks/task"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

const taskColumns = "id, owner_id, title, description, status, priority, due_date, created_at, updated_at"

// Store implements storage.TaskStore over a shared SQLite handle.
type Store struct {
	sqlDB *sql.DB
}

// New wraps an open database handle; callers own its lifecycle.
func New(sqlDB *sql.DB) *Store {
	return &Store{sqlDB: sqlDB}
}

func (s *Store) PutTask(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return fmt.Errorf("owner id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tasks (id, owner_id, title, description, status, priority, due_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		t.ID,
		t.OwnerID,
		t.Title,
		nullString(t.Description),
		string(t.Status),
		string(t.Priority),
		nullMillis(t.DueDate),
		toMillis(t.CreatedAt),
		toMillis(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, ownerID, taskID string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return task.Task{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?",
		taskID, ownerID,
	)
	found, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return found, nil
}

func (s *Store) ListTasks(ctx context.Context, ownerID string, filter storage.Filter, limit, offset int) (storage.Page, error) {
	if err := ctx.Err(); err != nil {
		return storage.Page{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Page{}, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return storage.Page{}, fmt.Errorf("limit must be positive")
	}
	if offset < 0 {
		return storage.Page{}, fmt.Errorf("offset must not be negative")
	}

	where := "WHERE owner_id = ?"
	args := []any{ownerID}
	if filter.Status != nil {
		where += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		where += " AND priority = ?"
		args = append(args, string(*filter.Priority))
	}

	var total int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks "+where, args...).Scan(&total); err != nil {
		return storage.Page{}, fmt.Errorf("count tasks: %w", err)
	}

	// rowid preserves insertion order, which keeps pagination stable when
	// created_at collides.
	query := "SELECT " + taskColumns + " FROM tasks " + where +
		" ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	rows, err := s.sqlDB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return storage.Page{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	page := storage.Page{Total: total}
	for rows.Next() {
		found, err := scanTask(rows)
		if err != nil {
			return storage.Page{}, fmt.Errorf("scan task: %w", err)
		}
		page.Tasks = append(page.Tasks, found)
	}
	if err := rows.Err(); err != nil {
		return storage.Page{}, fmt.Errorf("list tasks: %w", err)
	}
	return page, nil
}

func (s *Store) UpdateTask(ctx context.Context, ownerID, taskID string, patch task.Patch, updatedAt time.Time) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return task.Task{}, fmt.Errorf("storage is not configured")
	}

	// Ownership check and mutation run as one conditional statement so a
	// concurrent delete cannot race the update onto the wrong row.
	set := []string{"updated_at = ?"}
	args := []any{toMillis(updatedAt)}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, string(*patch.Priority))
	}
	if patch.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, toMillis(*patch.DueDate))
	}
	args = append(args, taskID, ownerID)

	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(set, ", ")+" WHERE id = ? AND owner_id = ?",
		args...,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return task.Task{}, fmt.Errorf("update task rows affected: %w", err)
	}
	if affected == 0 {
		return task.Task{}, storage.ErrNotFound
	}

	return s.GetTask(ctx, ownerID, taskID)
}

func (s *Store) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND owner_id = ?",
		taskID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountTasks(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var (
		t           task.Task
		description sql.NullString
		status      string
		priority    string
		dueDate     sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&description,
		&status,
		&priority,
		&dueDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		return task.Task{}, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	if dueDate.Valid {
		due := fromMillis(dueDate.Int64)
		t.DueDate = &due
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

var _ storage.TaskStore = (*Store)(nil)
