// internal/models/task.go
package models

import (
	"errors"
	"strings"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  string       `json:"assignedTo"`
	AssignedBy  string       `json:"assignedBy"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsOverdue reports whether the task has a due date before now and is not completed.
// Cancelled tasks are still counted.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != StatusCompleted && t.DueDate.Before(now)
}

// TaskPatch carries the optional fields of an update. Nil means "leave as is".
// DueDate set to an empty string clears the due date.
type TaskPatch struct {
	Title       *string
	Description *string
	AssignedTo  *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *string
}

// StatusOnly narrows the patch to the status field.
func (p TaskPatch) StatusOnly() TaskPatch {
	return TaskPatch{Status: p.Status}
}

// HasNonStatusFields reports whether any field other than status is set.
func (p TaskPatch) HasNonStatusFields() bool {
	return p.Title != nil || p.Description != nil || p.AssignedTo != nil ||
		p.Priority != nil || p.DueDate != nil
}

// Empty reports whether no field is set.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.AssignedTo == nil &&
		p.Status == nil && p.Priority == nil && p.DueDate == nil
}

var ErrInvalidDueDate = errors.New("invalid dueDate (expected YYYY-MM-DD or RFC3339)")

// ParseDueDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
// An empty string yields nil.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	return &t, nil
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	AssignedTo *string
	AssignedBy *string
	Status     *TaskStatus
	Priority   *TaskPriority
}

type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  string       `json:"assignedTo"`
	Status      TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority    TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	DueDate     string       `json:"dueDate"`
}

// UpdateTaskRequest is a partial update; absent fields stay untouched.
type UpdateTaskRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	AssignedTo  *string       `json:"assignedTo"`
	Status      *TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority    *TaskPriority `json:"priority"` // checked by the service, admins only
	DueDate     *string       `json:"dueDate"`
}

func (r UpdateTaskRequest) Patch() TaskPatch {
	return TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
}

type UpdateStatusRequest struct {
	Status TaskStatus `json:"status" binding:"required,taskstatus"`
}
