package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/printshop/printshop-api/internal/utils"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		utils.Error(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}
