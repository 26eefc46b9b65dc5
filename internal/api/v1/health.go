package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/logger"
)

type HealthHandler struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewHealthHandler(cfg *config.Configuration, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:    cfg,
		logger: logger,
	}
}

// @Summary Health check
// @Description Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"mode":    string(h.cfg.Deployment.Mode),
		"storage": string(h.cfg.Storage.Backend),
	})
}
