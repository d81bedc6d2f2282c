package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskflow/internal/authz"
	"taskflow/internal/models"
	"taskflow/internal/repositories"
	"taskflow/internal/utils"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type sentMail struct {
	kind, to, name string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) record(kind, to, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, name: name})
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(email, name string) error {
	return m.record("welcome", email, name)
}

func (m *fakeMailer) SendTaskAssignedEmail(email, name string, _ *models.Task) error {
	return m.record("task", email, name)
}

// fixture holds admin A, and plain users B and C.
type fixture struct {
	store   *repositories.MemoryStore
	tasks   TaskService
	mailer  *fakeMailer
	A, B, C authz.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	f := &fixture{
		store:  store,
		mailer: &fakeMailer{},
		A:      authz.Identity{ID: "user-a", Role: models.RoleAdmin},
		B:      authz.Identity{ID: "user-b", Role: models.RoleUser},
		C:      authz.Identity{ID: "user-c", Role: models.RoleUser},
	}
	for _, id := range []authz.Identity{f.A, f.B, f.C} {
		require.NoError(t, store.Users().Create(context.Background(), &models.User{
			ID: id.ID, Name: id.ID, Email: id.ID + "@example.com", Role: id.Role, CreatedAt: fixedNow,
		}))
	}
	f.tasks = NewTaskService(store.Tasks(), store.Users(),
		WithTaskMailer(f.mailer),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func newTestAuth(t *testing.T) AuthService {
	t.Helper()
	tm, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return newAuthServiceWithCost(tm, bcrypt.MinCost)
}

func ptr[T any](v T) *T { return &v }
