package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taskflow/internal/authz"
	"taskflow/internal/handlers"
	"taskflow/internal/metrics"
	"taskflow/internal/middleware"
	"taskflow/internal/services"
)

type Deps struct {
	Auth    services.AuthService
	Metrics *metrics.Metrics

	// AuthLimiter guards signup and login; nil disables it.
	AuthLimiter gin.HandlerFunc

	AuthHandler   *handlers.AuthHandler
	TaskHandler   *handlers.TaskHandler
	ReportHandler *handlers.ReportHandler
}

func SetupRoutes(r *gin.Engine, d Deps) *gin.Engine {
	protect := middleware.Authenticate(d.Auth, d.Metrics)
	allow := func(set authz.RoleSet) gin.HandlerFunc { return middleware.RequireRoles(set, d.Metrics) }

	// ---- public
	r.GET("/", handlers.Root)
	r.GET("/api/health", handlers.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// ---- auth
	auth := r.Group("/auth")
	{
		public := auth.Group("")
		if d.AuthLimiter != nil {
			public.Use(d.AuthLimiter)
		}
		public.POST("/signup", d.AuthHandler.Signup)
		public.POST("/login", d.AuthHandler.Login)

		auth.GET("/me", protect, allow(authz.CurrentUser), d.AuthHandler.Me)
		auth.GET("/users", protect, allow(authz.ListUsers), d.AuthHandler.ListUsers)
		auth.PUT("/users/:id", protect, allow(authz.UpdateUser), d.AuthHandler.UpdateUser)
	}

	// ---- api (JWT)
	api := r.Group("/api", protect)
	{
		api.GET("/admin/dashboard", allow(authz.AdminDashboard), d.ReportHandler.AdminDashboard)
		api.GET("/moderator/reports", allow(authz.ModReports), d.ReportHandler.ModeratorReports)
	}

	// TASKS: static paths are matched before /:id
	tasks := api.Group("/tasks")
	{
		tasks.GET("/stats/overview", allow(authz.TaskStats), d.TaskHandler.Stats)
		tasks.GET("/stats/report", allow(authz.TaskReport), d.TaskHandler.StatsReport)
		tasks.GET("/my-tasks", allow(authz.MyTasks), d.TaskHandler.MyTasks)

		tasks.POST("", allow(authz.CreateTask), d.TaskHandler.Create)
		tasks.GET("", allow(authz.ListTasks), d.TaskHandler.List)
		tasks.GET("/:id", allow(authz.GetTask), d.TaskHandler.Get)
		tasks.PUT("/:id", allow(authz.UpdateTask), d.TaskHandler.Update)
		tasks.PATCH("/:id/status", allow(authz.PatchStatus), d.TaskHandler.UpdateStatus)
		tasks.DELETE("/:id", allow(authz.DeleteTask), d.TaskHandler.Delete)
	}

	r.NoRoute(handlers.NotFound)
	return r
}
