package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/database"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
)

// Health reports liveness. Readiness is a database ping; a failing ping
// turns the check into a 503 so load balancers stop routing here.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		logger.Log.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "inkwell-backend",
	})
}
