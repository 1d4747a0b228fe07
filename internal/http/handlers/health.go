package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/platform/rediscache"
)

type HealthHandler struct {
	db    *gorm.DB
	cache rediscache.Cache
}

// NewHealthHandler takes optional dependencies; nil ones are reported as "disabled".
func NewHealthHandler(db *gorm.DB, cache rediscache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "disabled", "redis": "disabled"}
	status := http.StatusOK
	if h.db != nil {
		checks["database"] = "ok"
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.cache != nil {
		checks["redis"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "unreachable"
		}
	}
	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
