package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskflow/internal/models"
)

// MemoryStore keeps users and tasks in process memory. It backs the
// "memory" database driver used for local runs without PostgreSQL.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	tasks map[string]models.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		tasks: make(map[string]models.Task),
	}
}

func (m *MemoryStore) Users() UserRepository { return &memoryUsers{m} }
func (m *MemoryStore) Tasks() TaskRepository { return &memoryTasks{m} }

type memoryUsers struct{ m *MemoryStore }

func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) List(_ context.Context) ([]*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]*models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r *memoryUsers) Update(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.m.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	cur.Name, cur.Email, cur.Role = user.Name, user.Email, user.Role
	r.m.users[user.ID] = cur
	return nil
}

func (r *memoryUsers) Exists(_ context.Context, id string) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	_, ok := r.m.users[id]
	return ok, nil
}

type memoryTasks struct{ m *MemoryStore }

func (r *memoryTasks) Store(_ context.Context, task *models.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.tasks[task.ID] = *task
	return nil
}

func (r *memoryTasks) FindByID(_ context.Context, id string) (*models.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memoryTasks) FindAll(_ context.Context, f models.TaskFilter) ([]models.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]models.Task, 0, len(r.m.tasks))
	for _, t := range r.m.tasks {
		if f.AssignedTo != nil && t.AssignedTo != *f.AssignedTo {
			continue
		}
		if f.AssignedBy != nil && t.AssignedBy != *f.AssignedBy {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r *memoryTasks) Update(_ context.Context, task *models.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.tasks[task.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *task
	updated.AssignedBy = cur.AssignedBy
	updated.CreatedAt = cur.CreatedAt
	r.m.tasks[task.ID] = updated
	return nil
}

func (r *memoryTasks) UpdateStatus(_ context.Context, id string, to models.TaskStatus, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = to
	t.UpdatedAt = at
	r.m.tasks[id] = t
	return nil
}

func (r *memoryTasks) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.tasks, id)
	return nil
}

// newerFirst orders by creation time descending, ties broken by id.
func newerFirst(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}
