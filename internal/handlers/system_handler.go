package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIVersion = "1.0.0"

// @Summary  Service index
// @Tags     System
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the taskflow API",
		"version": APIVersion,
		"endpoints": gin.H{
			"auth":  "/auth",
			"api":   "/api",
			"tasks": "/api/tasks",
			"docs":  "/swagger/index.html",
		},
	})
}

// @Summary  Health check
// @Tags     System
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /api/health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
}
