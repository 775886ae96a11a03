package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sewline/backend/internal/infrastructure/persistence"
	"github.com/sewline/backend/internal/interfaces/http/dto"
)

// SystemHandler serves the operational endpoints: service info with
// database health, and a plain liveness ping.
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// DatabaseStatus reports connectivity and pool usage.
type DatabaseStatus struct {
	Status          string `json:"status" example:"up"`
	OpenConnections int    `json:"open_connections" example:"3"`
	InUse           int    `json:"in_use" example:"1"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string         `json:"name" example:"Sewline Backend API"`
	Version   string         `json:"version" example:"1.0.0"`
	GoVersion string         `json:"go_version" example:"go1.25.5"`
	Uptime    string         `json:"uptime" example:"1h30m45s"`
	Database  DatabaseStatus `json:"database"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns service version, uptime and database health
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Sewline Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  h.databaseStatus(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

func (h *SystemHandler) databaseStatus() DatabaseStatus {
	if err := h.db.Ping(); err != nil {
		return DatabaseStatus{Status: "down"}
	}

	status := DatabaseStatus{Status: "up"}
	if stats, err := h.db.Stats(); err == nil {
		status.OpenConnections = stats.OpenConnections
		status.InUse = stats.InUse
	}
	return status
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
