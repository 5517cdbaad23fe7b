package controllers

import (
	"net/http"
	"time"

	"github.com/panini/ontology-go/internal/database"
)

// HealthController 服务健康检查
type HealthController struct {
	BaseController
}

// Health 返回服务与数据库状态
func (c *HealthController) Health() {
	status := "ok"
	dbStatus := "ok"

	if database.DB == nil {
		dbStatus = "not initialized"
		status = "degraded"
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
		status = "degraded"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, map[string]interface{}{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
