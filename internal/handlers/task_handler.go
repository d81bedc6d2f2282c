package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/logger"
	"taskflow/internal/models"
	"taskflow/internal/pdf"
	"taskflow/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	reports pdf.Generator
}

func NewTaskHandler(service services.TaskService, reports pdf.Generator) *TaskHandler {
	return &TaskHandler{service: service, reports: reports}
}

// @Summary      Create task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.CreateTaskRequest  true  "Task"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "[task][create]", err)
		return
	}
	due, err := models.ParseDueDate(req.DueDate)
	if err != nil {
		respondError(c, "[task][create]", apperr.Validation(err.Error()))
		return
	}

	task, err := h.service.Create(c.Request.Context(), id, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     due,
	})
	if err != nil {
		respondError(c, "[task][create]", err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "Task created successfully", "task": task})
}

// @Summary      List all tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "[task][list]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": len(tasks), "tasks": tasks})
}

// @Summary      Tasks assigned to the caller
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tasks/my-tasks [get]
func (h *TaskHandler) MyTasks(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	tasks, err := h.service.ListByAssignee(c.Request.Context(), id.ID)
	if err != nil {
		respondError(c, "[task][mine]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": len(tasks), "tasks": tasks})
}

// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[task][get]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"task": task})
}

// @Summary      Update task
// @Description  Admins may change any field. The assignee may call it too, but only the status is applied.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Task ID"
// @Param        body  body      models.UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "[task][update]", err)
		return
	}
	task, err := h.service.Update(c.Request.Context(), id, c.Param("id"), req.Patch())
	if err != nil {
		respondError(c, "[task][update]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Task updated successfully", "task": task})
}

// @Summary      Change task status
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Task ID"
// @Param        body  body      models.UpdateStatusRequest  true  "New status"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "[task][status]", err)
		return
	}
	task, err := h.service.UpdateStatus(c.Request.Context(), id, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, "[task][status]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Task status updated successfully", "task": task})
}

// @Summary      Delete task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, "[task][delete]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// @Summary      Task statistics
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/tasks/stats/overview [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, "[task][stats]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"statistics": stats})
}

// @Summary      Task statistics as PDF
// @Tags         Tasks
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/tasks/stats/report [get]
func (h *TaskHandler) StatsReport(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, "[task][report]", err)
		return
	}

	now := time.Now()
	body, err := h.reports.StatisticsReport(pdf.StatisticsData{
		Stats:       *stats,
		GeneratedAt: now,
		GeneratedBy: id.ID,
	})
	if err != nil {
		respondError(c, "[task][report]", apperr.Internal("failed to render report", err))
		return
	}
	logger.FromContext(c.Request.Context()).Info("[task][report][ok]", "bytes", len(body))

	name := fmt.Sprintf("task-statistics-%s.pdf", now.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", body)
}
