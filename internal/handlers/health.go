package handlers

import (
	"net/http"
	"time"

	"livsoul/internal/scoring"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Check reports liveness plus a dependency snapshot. Database trouble
// degrades the status without failing the probe.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	dbStatus := "connected"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"version":   Version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
		"database":  dbStatus,
		"model": gin.H{
			"type":       scoring.ModelType,
			"confidence": scoring.ConfidenceScore,
		},
	})
}
