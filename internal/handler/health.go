package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradesim/internal/db"
)

// HealthHandler answers liveness and readiness probes. DB is optional; when
// the journal is disabled readiness only reflects the process itself.
type HealthHandler struct {
	DB *db.DB
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB != nil {
		if err := db.Ping(h.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
