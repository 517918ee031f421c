// Package storage defines task persistence contracts.
package storage

import (
	"context"
	"time"

	"github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/services/tasks/task"
)

// ErrNotFound indicates a task is absent or owned by someone else.
//
// The two cases are deliberately indistinguishable so existence is never
// revealed to a non-owner.
var ErrNotFound = errors.New(errors.CodeNotFound, "task not found")

// Filter narrows a listing; nil fields are unconstrained and supplied fields
// combine as a conjunction.
type Filter struct {
	Status   *task.Status
	Priority *task.Priority
}

// Page is one window of a filtered listing.
type Page struct {
	Tasks []task.Task
	// Total counts every row matching the filter, not just this window.
	Total int64
}

// TaskStore persists owner-scoped task records.
type TaskStore interface {
	// PutTask inserts a new task row.
	PutTask(ctx context.Context, t task.Task) error
	// GetTask fetches a task only when it exists and belongs to ownerID.
	GetTask(ctx context.Context, ownerID, taskID string) (task.Task, error)
	// ListTasks returns a page of ownerID's tasks ordered by creation time
	// descending with insertion order as the tie-break.
	ListTasks(ctx context.Context, ownerID string, filter Filter, limit, offset int) (Page, error)
	// UpdateTask applies a partial update as one conditional statement keyed
	// on id and owner, refreshing updated_at, and returns the stored row.
	// Returns ErrNotFound when no row matched.
	UpdateTask(ctx context.Context, ownerID, taskID string, patch task.Patch, updatedAt time.Time) (task.Task, error)
	// DeleteTask removes a task as one conditional statement keyed on id and
	// owner. Returns ErrNotFound when no row matched.
	DeleteTask(ctx context.Context, ownerID, taskID string) error
	// CountTasks reports the total number of task rows.
	CountTasks(ctx context.Context) (int64, error)
}
