package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
	"taskflow/internal/models"
	"taskflow/internal/repositories"
)

// CreateTaskInput is the validated payload of a task creation.
// Empty Status/Priority fall back to pending/medium.
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// TaskService implements the task lifecycle: creation, ownership-checked
// updates, deletion, listing and statistics.
type TaskService interface {
	Create(ctx context.Context, caller authz.Identity, in CreateTaskInput) (*models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, caller authz.Identity, id string, patch models.TaskPatch) (*models.Task, error)
	UpdateStatus(ctx context.Context, caller authz.Identity, id string, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, caller authz.Identity, id string) error
	Statistics(ctx context.Context) (*models.Statistics, error)
}

type taskService struct {
	tasks   repositories.TaskRepository
	users   repositories.UserRepository
	mailer  EmailService // nil when SMTP is not configured
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

type TaskServiceOption func(*taskService)

func WithTaskMailer(m EmailService) TaskServiceOption {
	return func(s *taskService) { s.mailer = m }
}

func WithTaskMetrics(m *metrics.Metrics) TaskServiceOption {
	return func(s *taskService) { s.metrics = m }
}

func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskService) { s.now = now }
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(tasks repositories.TaskRepository, users repositories.UserRepository, opts ...TaskServiceOption) TaskService {
	s := &taskService{
		tasks: tasks,
		users: users,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *taskService) Create(ctx context.Context, caller authz.Identity, in CreateTaskInput) (*models.Task, error) {
	log := logger.FromContext(ctx)

	title := strings.TrimSpace(in.Title)
	assignee := strings.TrimSpace(in.AssignedTo)
	if title == "" || assignee == "" {
		return nil, apperr.Validation("Please provide title and assignedTo")
	}
	if in.Status == "" {
		in.Status = models.StatusPending
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validation("invalid priority")
	}

	// the assignee must exist before anything is written
	user, err := s.users.GetByID(ctx, assignee)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Warn("[task][create][404] assignee not found", "assignedTo", assignee)
			return nil, apperr.NotFound("Assigned user not found")
		}
		return nil, apperr.Internal("failed to verify assignee", err)
	}

	now := s.now()
	task := &models.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		AssignedTo:  assignee,
		AssignedBy:  caller.ID,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Store(ctx, task); err != nil {
		return nil, apperr.Internal("failed to create task", err)
	}
	s.metrics.TaskMutation("create")
	log.Info("[task][create][ok]", "id", task.ID, "assignedTo", task.AssignedTo, "by", caller.ID)

	s.notifyAssignee(ctx, user, task)
	return task, nil
}

func (s *taskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.load(ctx, id)
}

func (s *taskService) ListByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{AssignedTo: &userID})
	if err != nil {
		return nil, apperr.Internal("failed to get user tasks", err)
	}
	return tasks, nil
}

func (s *taskService) ListAll(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{})
	if err != nil {
		return nil, apperr.Internal("failed to get tasks", err)
	}
	return tasks, nil
}

// Update merges patch into the stored task. Non-admin callers must be the
// assignee and only their status change is applied; other fields are dropped.
func (s *taskService) Update(ctx context.Context, caller authz.Identity, id string, patch models.TaskPatch) (*models.Task, error) {
	log := logger.FromContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		if current.AssignedTo != caller.ID {
			log.Warn("[task][update][deny]", "id", id, "caller", caller.ID, "assignedTo", current.AssignedTo)
			return nil, apperr.Forbidden("Not authorized to update this task")
		}
		if patch.HasNonStatusFields() {
			log.Debug("[task][update] non-admin patch narrowed to status", "id", id, "caller", caller.ID)
		}
		patch = patch.StatusOnly()
	}

	if err := s.apply(ctx, current, patch); err != nil {
		return nil, err
	}
	current.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, current); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal("failed to update task", err)
	}
	s.metrics.TaskMutation("update")
	log.Info("[task][update][ok]", "id", id, "by", caller.ID)
	return current, nil
}

// UpdateStatus follows the same ownership rule as Update, restricted to status.
func (s *taskService) UpdateStatus(ctx context.Context, caller authz.Identity, id string, status models.TaskStatus) (*models.Task, error) {
	log := logger.FromContext(ctx)

	if !status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && current.AssignedTo != caller.ID {
		log.Warn("[task][status][deny]", "id", id, "caller", caller.ID, "assignedTo", current.AssignedTo)
		return nil, apperr.Forbidden("Not authorized to update this task")
	}
	if !canTransition(current.Status, status) {
		return nil, apperr.Validation(fmt.Sprintf("cannot move task from %s to %s", current.Status, status))
	}

	now := s.now()
	if err := s.tasks.UpdateStatus(ctx, id, status, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal("failed to update task status", err)
	}
	current.Status = status
	current.UpdatedAt = now
	s.metrics.TaskMutation("status")
	log.Info("[task][status][ok]", "id", id, "status", status, "by", caller.ID)
	return current, nil
}

func (s *taskService) Delete(ctx context.Context, caller authz.Identity, id string) error {
	if !caller.IsAdmin() {
		return apperr.Forbidden("forbidden")
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("Task not found")
		}
		return apperr.Internal("failed to delete task", err)
	}
	s.metrics.TaskMutation("delete")
	logger.FromContext(ctx).Info("[task][delete][ok]", "id", id, "by", caller.ID)
	return nil
}

// Statistics recomputes the overview from the full collection in one pass.
func (s *taskService) Statistics(ctx context.Context) (*models.Statistics, error) {
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{})
	if err != nil {
		return nil, apperr.Internal("failed to get statistics", err)
	}
	stats := ComputeStatistics(tasks, s.now())
	return &stats, nil
}

// ComputeStatistics tallies tasks by status and priority and counts overdue
// ones. Unknown status or priority values only contribute to Total.
func ComputeStatistics(tasks []models.Task, now time.Time) models.Statistics {
	var st models.Statistics
	for i := range tasks {
		t := &tasks[i]
		st.Total++

		switch t.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusCompleted:
			st.Completed++
		case models.StatusCancelled:
			st.Cancelled++
		}

		switch t.Priority {
		case models.PriorityLow:
			st.ByPriority.Low++
		case models.PriorityMedium:
			st.ByPriority.Medium++
		case models.PriorityHigh:
			st.ByPriority.High++
		case models.PriorityUrgent:
			st.ByPriority.Urgent++
		}

		if t.IsOverdue(now) {
			st.Overdue++
		}
	}
	return st
}

func (s *taskService) load(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal("failed to get task", err)
	}
	return task, nil
}

func (s *taskService) apply(ctx context.Context, t *models.Task, p models.TaskPatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return apperr.Validation("title cannot be empty")
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AssignedTo != nil && *p.AssignedTo != t.AssignedTo {
		assignee := strings.TrimSpace(*p.AssignedTo)
		if assignee == "" {
			return apperr.Validation("assignedTo cannot be empty")
		}
		ok, err := s.users.Exists(ctx, assignee)
		if err != nil {
			return apperr.Internal("failed to verify assignee", err)
		}
		if !ok {
			return apperr.NotFound("Assigned user not found")
		}
		t.AssignedTo = assignee
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return apperr.Validation("invalid status")
		}
		if !canTransition(t.Status, *p.Status) {
			return apperr.Validation(fmt.Sprintf("cannot move task from %s to %s", t.Status, *p.Status))
		}
		t.Status = *p.Status
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return apperr.Validation("invalid priority")
		}
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due, err := models.ParseDueDate(*p.DueDate)
		if err != nil {
			return apperr.Validation(err.Error())
		}
		t.DueDate = due
	}
	return nil
}

func (s *taskService) notifyAssignee(ctx context.Context, user *models.User, task *models.Task) {
	if s.mailer == nil || user == nil || user.Email == "" {
		return
	}
	if err := s.mailer.SendTaskAssignedEmail(user.Email, user.Name, task); err != nil {
		// warn but do not fail creation
		logger.FromContext(ctx).Warn("[task][notify] email failed", "assignee", user.ID, "err", err)
	}
}
