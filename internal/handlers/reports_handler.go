package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/services"
)

// ReportHandler serves the role-gated dashboards.
type ReportHandler struct {
	tasks services.TaskService
	users services.UserService
}

func NewReportHandler(tasks services.TaskService, users services.UserService) *ReportHandler {
	return &ReportHandler{tasks: tasks, users: users}
}

// @Summary      Moderator reports
// @Description  Task totals for moderators and admins.
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/moderator/reports [get]
func (h *ReportHandler) ModeratorReports(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	stats, err := h.tasks.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, "[reports][moderator]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message":    "Reports data",
		"accessedBy": id,
		"reports": []gin.H{
			{"type": "open", "count": stats.Pending + stats.InProgress},
			{"type": "overdue", "count": stats.Overdue},
			{"type": "closed", "count": stats.Completed + stats.Cancelled},
		},
	})
}

// @Summary      Admin dashboard
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/admin/dashboard [get]
func (h *ReportHandler) AdminDashboard(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, "[reports][admin]", err)
		return
	}
	stats, err := h.tasks.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, "[reports][admin]", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message": "Welcome to Admin Dashboard",
		"admin":   id.ID,
		"stats": gin.H{
			"totalUsers":   len(users),
			"totalTasks":   stats.Total,
			"openTasks":    stats.Pending + stats.InProgress,
			"overdueTasks": stats.Overdue,
		},
	})
}
