package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/pdf"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

type ReportHandler struct {
	Analytics *services.AnalyticsService
	Generator *pdf.ReportGenerator
}

func NewReportHandler(analytics *services.AnalyticsService, generator *pdf.ReportGenerator) *ReportHandler {
	return &ReportHandler{Analytics: analytics, Generator: generator}
}

// PipelinePDF streams the pipeline snapshot as a PDF download.
func (h *ReportHandler) PipelinePDF(c *gin.Context) {
	now := time.Now()
	period := c.DefaultQuery("period", "30d")

	data := pdf.ReportData{
		GeneratedAt: now,
		Pipeline:    h.Analytics.Pipeline(),
		Summary:     h.Analytics.Summary(period, now),
		Stages:      h.Analytics.StageDurations(now),
	}

	var buf bytes.Buffer
	if err := h.Generator.PipelineReport(&buf, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="pipeline.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
