package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

type AssignmentHandler struct {
	Service *services.AssignmentService
}

func NewAssignmentHandler(service *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{Service: service}
}

type autoAssignRequest struct {
	Entity models.EntityType `json:"entity"`
	Fields map[string]any    `json:"fields"`
}

// AutoAssign runs the rule engine against an ad-hoc field map. A 204 means
// no rule matched and no fallback candidate was available.
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Entity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid entity type is required"})
		return
	}

	decision := h.Service.AutoAssign(req.Entity, req.Fields)
	if decision == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, decision)
}
