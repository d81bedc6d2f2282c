package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/handlers"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
	"taskflow/internal/pdf"
	"taskflow/internal/repositories"
	"taskflow/internal/services"
	"taskflow/internal/utils"
)

type server struct {
	t *testing.T
	h http.Handler
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Discard()
	require.NoError(t, handlers.RegisterValidators())

	tm, err := utils.NewTokenManager("routes-secret", time.Hour)
	require.NoError(t, err)
	store := repositories.NewMemoryStore()
	m := metrics.New()
	auth := services.NewAuthService(tm)
	users := services.NewUserService(store.Users(), auth, nil, m)
	tasks := services.NewTaskService(store.Tasks(), store.Users(), services.WithTaskMetrics(m))

	r := gin.New()
	SetupRoutes(r, Deps{
		Auth:          auth,
		Metrics:       m,
		AuthHandler:   handlers.NewAuthHandler(users),
		TaskHandler:   handlers.NewTaskHandler(tasks, pdf.NewReportGenerator("")),
		ReportHandler: handlers.NewReportHandler(tasks, users),
	})
	return &server{t: t, h: r}
}

func (s *server) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	out := map[string]any{}
	if ct := rec.Header().Get("Content-Type"); rec.Body.Len() > 0 && bytes.HasPrefix([]byte(ct), []byte("application/json")) {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// signup returns (token, userID).
func (s *server) signup(name, email, role string) (string, string) {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, code, body)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func TestPublicRoutes(t *testing.T) {
	s := newServer(t)

	code, body := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])

	code, body = s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["endpoints"])

	code, body = s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", body["error"])

	code, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	token, id := s.signup("Ann", "ann@example.com", "")

	code, body := s.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	me := body["user"].(map[string]any)
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "user", me["role"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "passwordHash")

	code, body = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	code, body = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["error"])

	// duplicate signup is a 400, not a 409
	code, body = s.do(http.MethodPost, "/auth/signup", "", map[string]string{"name": "x", "email": "ANN@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = s.do(http.MethodPost, "/auth/signup", "", map[string]any{"name": "x", "email": "z@example.com", "password": "secret1", "admin": true})
	assert.Equal(t, http.StatusBadRequest, code, "unknown fields are rejected")

	code, _ = s.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoleGates(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup("Root", "root@example.com", "admin")
	mod, _ := s.signup("Mod", "mod@example.com", "moderator")
	user, _ := s.signup("U", "u@example.com", "user")

	cases := []struct {
		method, path string
		token        string
		want         int
	}{
		{http.MethodGet, "/auth/users", user, http.StatusForbidden},
		{http.MethodGet, "/auth/users", mod, http.StatusForbidden},
		{http.MethodGet, "/auth/users", admin, http.StatusOK},
		{http.MethodGet, "/api/tasks", user, http.StatusForbidden},
		{http.MethodGet, "/api/tasks", admin, http.StatusOK},
		{http.MethodGet, "/api/tasks/stats/overview", mod, http.StatusForbidden},
		{http.MethodGet, "/api/tasks/stats/overview", admin, http.StatusOK},
		{http.MethodGet, "/api/moderator/reports", user, http.StatusForbidden},
		{http.MethodGet, "/api/moderator/reports", mod, http.StatusOK},
		{http.MethodGet, "/api/moderator/reports", admin, http.StatusOK},
		{http.MethodGet, "/api/admin/dashboard", mod, http.StatusForbidden},
		{http.MethodGet, "/api/admin/dashboard", admin, http.StatusOK},
		{http.MethodGet, "/api/tasks/my-tasks", user, http.StatusOK},
		{http.MethodGet, "/api/tasks/my-tasks", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		code, _ := s.do(tc.method, tc.path, tc.token, nil)
		assert.Equal(t, tc.want, code, "%s %s", tc.method, tc.path)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup("Root", "root@example.com", "admin")
	bTok, bID := s.signup("B", "b@example.com", "")
	cTok, _ := s.signup("C", "c@example.com", "")

	code, body := s.do(http.MethodPost, "/api/tasks", admin, map[string]string{"title": "Write docs", "assignedTo": bID, "dueDate": "2020-01-01"})
	require.Equal(t, http.StatusCreated, code, body)
	task := body["task"].(map[string]any)
	id := task["id"].(string)
	assert.Equal(t, "pending", task["status"])
	assert.Equal(t, "medium", task["priority"])

	code, body = s.do(http.MethodPost, "/api/tasks", admin, map[string]string{"title": "x", "assignedTo": "ghost"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Assigned user not found", body["error"])

	code, body = s.do(http.MethodPost, "/api/tasks", admin, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please provide title and assignedTo", body["error"])

	code, _ = s.do(http.MethodPost, "/api/tasks", admin, map[string]string{"title": "x", "assignedTo": bID, "status": "done"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/tasks", bTok, map[string]string{"title": "x", "assignedTo": bID})
	assert.Equal(t, http.StatusForbidden, code)

	// assignee moves it along
	code, body = s.do(http.MethodPatch, "/api/tasks/"+id+"/status", bTok, map[string]string{"status": "in-progress"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "in-progress", body["task"].(map[string]any)["status"])

	// non-status fields from the assignee are dropped
	code, body = s.do(http.MethodPut, "/api/tasks/"+id, bTok, map[string]string{"title": "hijacked", "status": "completed"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Write docs", body["task"].(map[string]any)["title"])
	assert.Equal(t, "completed", body["task"].(map[string]any)["status"])

	// someone else cannot touch it
	code, _ = s.do(http.MethodPatch, "/api/tasks/"+id+"/status", cTok, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPut, "/api/tasks/"+id, cTok, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(http.MethodGet, "/api/tasks/my-tasks", bTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = s.do(http.MethodGet, "/api/tasks/my-tasks", cTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["tasks"])

	code, body = s.do(http.MethodGet, "/api/tasks/stats/overview", admin, nil)
	require.Equal(t, http.StatusOK, code)
	stats := body["statistics"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["completed"])
	assert.EqualValues(t, 0, stats["overdue"], "completed tasks are never overdue")

	code, _ = s.do(http.MethodDelete, "/api/tasks/"+id, bTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, body = s.do(http.MethodDelete, "/api/tasks/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task deleted successfully", body["message"])
	code, _ = s.do(http.MethodDelete, "/api/tasks/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/tasks/"+id, bTok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAssigneeUpdateDropsInvalidPriority(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup("Root", "root@example.com", "admin")
	bTok, bID := s.signup("B", "b@example.com", "")
	cTok, _ := s.signup("C", "c@example.com", "")

	code, body := s.do(http.MethodPost, "/api/tasks", admin, map[string]string{"title": "Ship", "assignedTo": bID, "priority": "high"})
	require.Equal(t, http.StatusCreated, code, body)
	id := body["task"].(map[string]any)["id"].(string)

	patch := map[string]string{"status": "completed", "priority": "p0"}

	code, _ = s.do(http.MethodPut, "/api/tasks/"+id, cTok, patch)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(http.MethodPut, "/api/tasks/"+id, bTok, patch)
	require.Equal(t, http.StatusOK, code, body)
	task := body["task"].(map[string]any)
	assert.Equal(t, "completed", task["status"])
	assert.Equal(t, "high", task["priority"])

	// admins still get the priority checked
	code, body = s.do(http.MethodPut, "/api/tasks/"+id, admin, map[string]string{"priority": "p0"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid priority", body["error"])
}

func TestStatsReportIsPDF(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup("Root", "root@example.com", "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/stats/report", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestAdminUpdatesUserRole(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup("Root", "root@example.com", "admin")
	_, uid := s.signup("U", "u@example.com", "")

	code, body := s.do(http.MethodPut, "/auth/users/"+uid, admin, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "moderator", body["user"].(map[string]any)["role"])

	code, _ = s.do(http.MethodPut, "/auth/users/"+uid, admin, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, code)
}
