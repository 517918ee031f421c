// Package app orchestrates owner-scoped task management.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/platform/id"
	"github.com/taskdeck/taskdeck/internal/services/tasks/storage"
	"github.com/taskdeck/taskdeck/internal/services/tasks/task"
)

// Listing bounds. Out-of-range requests clamp instead of failing.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListRequest describes one page of an owner's tasks.
type ListRequest struct {
	// Status narrows to one status when set.
	Status *task.Status
	// Priority narrows to one priority when set.
	Priority *task.Priority
	// Limit is the page size; clamps to [1, MaxLimit], DefaultLimit when zero.
	Limit int
	// Page is the 1-based page number; clamps to a minimum of 1.
	Page int
}

// ListResult is a resolved page plus the pagination echo.
type ListResult struct {
	Tasks []task.Task
	Total int64
	Limit int
	Page  int
}

// Config defines the inputs for the task service.
type Config struct {
	Store storage.TaskStore
	// Now overrides the clock for tests.
	Now func() time.Time
	// NewID overrides id generation for tests.
	NewID func() (string, error)
}

// Service implements task CRUD on behalf of an authenticated owner.
type Service struct {
	store storage.TaskStore
	now   func() time.Time
	newID func() (string, error)
}

// New builds a task service from config.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: cfg.Store, now: now, newID: newID}, nil
}

// Create validates input, applies defaults, and persists a task for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, input task.CreateInput) (task.Task, error) {
	created, err := task.New(ownerID, input, s.now, s.newID)
	if err != nil {
		return task.Task{}, err
	}
	if err := s.store.PutTask(ctx, created); err != nil {
		return task.Task{}, fmt.Errorf("persist task: %w", err)
	}
	return created, nil
}

// Get fetches one of ownerID's tasks.
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (task.Task, error) {
	found, err := s.store.GetTask(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return found, nil
}

// List resolves one page of ownerID's tasks after clamping pagination inputs.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) (ListResult, error) {
	if req.Status != nil {
		if err := req.Status.Validate(); err != nil {
			return ListResult{}, err
		}
	}
	if req.Priority != nil {
		if err := req.Priority.Validate(); err != nil {
			return ListResult{}, err
		}
	}

	limit := req.Limit
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	result, err := s.store.ListTasks(ctx, ownerID, storage.Filter{
		Status:   req.Status,
		Priority: req.Priority,
	}, limit, offset)
	if err != nil {
		return ListResult{}, fmt.Errorf("list tasks: %w", err)
	}
	return ListResult{
		Tasks: result.Tasks,
		Total: result.Total,
		Limit: limit,
		Page:  page,
	}, nil
}

// Update applies a partial update to one of ownerID's tasks and returns the
// stored row. An empty patch still refreshes updated_at.
func (s *Service) Update(ctx context.Context, ownerID, taskID string, patch task.Patch) (task.Task, error) {
	if err := patch.Validate(); err != nil {
		return task.Task{}, err
	}
	updated, err := s.store.UpdateTask(ctx, ownerID, taskID, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// Delete removes one of ownerID's tasks.
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	if err := s.store.DeleteTask(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
