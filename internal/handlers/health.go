package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WorkerStatus reports whether each worker is running
type WorkerStatus interface {
	GetWorkerStatus() map[string]bool
}

type HealthHandler struct {
	workers WorkerStatus
	started time.Time
}

func NewHealthHandler(workers WorkerStatus) *HealthHandler {
	return &HealthHandler{
		workers: workers,
		started: time.Now(),
	}
}

// Health reports liveness and worker state
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"workers": h.workers.GetWorkerStatus(),
	})
}

// NotFound handles requests to unknown routes
func (h *HealthHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "route not found: " + c.Request.URL.Path,
	})
}
