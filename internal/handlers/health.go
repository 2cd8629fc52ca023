package handlers

import (
	"database/sql"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/billsplit/backend/internal/config"
	"github.com/billsplit/backend/internal/database"
	"github.com/billsplit/backend/pkg/utils"
)

type HealthHandler struct {
	App     config.AppConfig
	Driver  string
	DB      *sql.DB
	started time.Time
}

func NewHealthHandler(app config.AppConfig, driver string, db *sql.DB) *HealthHandler {
	return &HealthHandler{App: app, Driver: driver, DB: db, started: time.Now()}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbHealth := database.Check(c.UserContext(), h.DB, h.Driver)

	return utils.Success(c, fiber.StatusOK, "System health check successful", fiber.Map{
		"app": fiber.Map{
			"name":  h.App.Name,
			"env":   h.App.Env,
			"debug": h.App.Debug,
			"url":   c.BaseURL(),
		},
		"database": dbHealth,
		"server": fiber.Map{
			"go_version":      runtime.Version(),
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": bytesToMB(mem.Alloc),
			"memory_sys_mb":   bytesToMB(mem.Sys),
			"uptime_seconds":  int64(time.Since(h.started).Seconds()),
			"server_time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func bytesToMB(b uint64) float64 {
	return float64(b/1024) / 1024
}
