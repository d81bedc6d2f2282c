package main

import (
	"os"

	"taskflow/internal/logger"
)

// @title                       taskflow API
// @version                     1.0.0
// @description                 Task assignment API with role-based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := rootCmd().Execute(); err != nil {
		logger.Error("[taskflow] exit", "err", err)
		os.Exit(1)
	}
}
