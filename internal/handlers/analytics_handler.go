package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

func (h *AnalyticsHandler) StageDurations(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.StageDurations(time.Now()))
}

func (h *AnalyticsHandler) Pipeline(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Pipeline())
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	period := c.DefaultQuery("period", "30d")
	c.JSON(http.StatusOK, h.Service.Summary(period, time.Now()))
}
