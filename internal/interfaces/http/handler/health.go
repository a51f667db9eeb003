package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/florexport/backend/internal/infrastructure/persistence"
	"github.com/florexport/backend/internal/interfaces/http/dto"
)

// HealthHandler handles health and readiness endpoints
type HealthHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *persistence.Database) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers health routes on the given group
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Database  string                 `json:"database"`
	Pool      *persistence.PoolStats `json:"pool,omitempty"`
	GoVersion string                 `json:"go_version"`
	Uptime    string                 `json:"uptime"`
}

// Health reports service and database health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
			return
		}
		if stats, err := h.db.Stats(); err == nil {
			resp.Pool = &stats
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
