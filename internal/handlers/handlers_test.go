package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/logger"
	"taskflow/internal/middleware"
	"taskflow/internal/models"
	"taskflow/internal/pdf"
	"taskflow/internal/repositories"
	"taskflow/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Discard()
}

type failingPDF struct{}

func (failingPDF) StatisticsReport(pdf.StatisticsData) ([]byte, error) {
	return nil, errors.New("font missing")
}

// as injects a caller without going through token parsing.
func as(id authz.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetIdentity(c, id)
		c.Next()
	}
}

func call(r *gin.Engine, method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func newTaskRouter(t *testing.T, gen pdf.Generator) (*gin.Engine, string) {
	t.Helper()
	require.NoError(t, RegisterValidators())
	store := repositories.NewMemoryStore()
	require.NoError(t, store.Users().Create(context.Background(), &models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser}))

	h := NewTaskHandler(services.NewTaskService(store.Tasks(), store.Users()), gen)
	admin := authz.Identity{ID: "admin", Role: models.RoleAdmin}
	r := gin.New()
	r.POST("/tasks", as(admin), h.Create)
	r.PATCH("/tasks/:id/status", as(admin), h.UpdateStatus)
	r.PUT("/tasks/:id", as(admin), h.Update)
	r.GET("/report", as(admin), h.StatsReport)
	return r, "u1"
}

func TestCreateBindingErrors(t *testing.T) {
	r, uid := newTaskRouter(t, pdf.NewReportGenerator(""))

	code, body := call(r, http.MethodPost, "/tasks", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Request body is required", body["error"])

	code, body = call(r, http.MethodPost, "/tasks", `{"title":"x","assignedTo":"`+uid+`","priority":"critical"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], `invalid priority "critical"`)

	code, body = call(r, http.MethodPost, "/tasks", `{"title":"x","assignedTo":"`+uid+`","owner":"me"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "unknown field")

	code, body = call(r, http.MethodPost, "/tasks", `{"title":"x","assignedTo":"`+uid+`","dueDate":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, body = call(r, http.MethodPost, "/tasks", `{"title":"x","assignedTo":"`+uid+`","dueDate":"2026-12-31","priority":"urgent"}`)
	require.Equal(t, http.StatusCreated, code, body)
	task := body["task"].(map[string]any)
	assert.Equal(t, "urgent", task["priority"])
	assert.Equal(t, "2026-12-31T00:00:00Z", task["dueDate"])
}

func TestStatusBindingRequiresKnownValue(t *testing.T) {
	r, uid := newTaskRouter(t, pdf.NewReportGenerator(""))
	_, body := call(r, http.MethodPost, "/tasks", `{"title":"x","assignedTo":"`+uid+`"}`)
	id := body["task"].(map[string]any)["id"].(string)

	code, body := call(r, http.MethodPatch, "/tasks/"+id+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "status is required", body["error"])

	code, _ = call(r, http.MethodPatch, "/tasks/"+id+"/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(r, http.MethodPut, "/tasks/"+id, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(r, http.MethodPatch, "/tasks/"+id+"/status", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cancelled", body["task"].(map[string]any)["status"])
}

func TestReportRenderFailureIs500(t *testing.T) {
	r, _ := newTaskRouter(t, failingPDF{})
	code, body := call(r, http.MethodGet, "/report", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "failed to render report", body["error"])
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		respondError(c, "[test]", apperr.Internal("", errors.New("pq: password authentication failed")))
	})
	code, body := call(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestHandlerWithoutIdentityIs401(t *testing.T) {
	require.NoError(t, RegisterValidators())
	store := repositories.NewMemoryStore()
	h := NewTaskHandler(services.NewTaskService(store.Tasks(), store.Users()), pdf.NewReportGenerator(""))
	r := gin.New()
	r.GET("/mine", h.MyTasks)

	code, _ := call(r, http.MethodGet, "/mine", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
