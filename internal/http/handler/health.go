package handler

import (
	"net/http"

	"basegraph.app/helpdesk/internal/http/dto"
	"basegraph.app/helpdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthService service.HealthService
}

func NewHealthHandler(healthService service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

func (h *HealthHandler) Check(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:           report.Status,
		StoreState:       report.StoreState,
		BridgeConfigured: report.BridgeConfigured,
	})
}
