// Package task defines the task domain model.
package task

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/platform/id"
)

// Status tracks task progress.
type Status string

// Task statuses.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority ranks task urgency.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	// ErrEmptyTitle indicates a missing or blank task title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeValidation, "title is required")
)

// Validate checks the status against the recognized enumeration.
func (s Status) Validate() error {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeValidation,
		fmt.Sprintf("status %q is not one of todo, in_progress, done", string(s)),
		map[string]string{"field": "status"},
	)
}

// Validate checks the priority against the recognized enumeration.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeValidation,
		fmt.Sprintf("priority %q is not one of low, medium, high", string(p)),
		map[string]string{"field": "priority"},
	)
}

// Task represents a unit of work owned by exactly one user.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateInput describes the fields accepted when creating a task.
//
// Zero-valued Status and Priority take the documented defaults.
type CreateInput struct {
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil
}

// Validate checks patch fields before any mutation is applied.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil {
		if err := p.Status.Validate(); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := p.Priority.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// New creates a task for ownerID from validated input, applying defaults.
func New(ownerID string, input CreateInput, now func() time.Time, idGenerator func() (string, error)) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if strings.TrimSpace(ownerID) == "" {
		return Task{}, fmt.Errorf("owner id is required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	status := input.Status
	if status == "" {
		status = StatusTodo
	}
	if err := status.Validate(); err != nil {
		return Task{}, err
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := priority.Validate(); err != nil {
		return Task{}, err
	}

	taskID, err := idGenerator()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}

	createdAt := now().UTC()
	created := Task{
		ID:        taskID,
		OwnerID:   ownerID,
		Title:     title,
		Status:    status,
		Priority:  priority,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if input.Description != nil {
		description := *input.Description
		created.Description = &description
	}
	if input.DueDate != nil {
		dueDate := input.DueDate.UTC()
		created.DueDate = &dueDate
	}
	return created, nil
}
