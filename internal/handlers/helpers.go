package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/middleware"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

func getMemberID(c *gin.Context) int {
	v, ok := c.Get(middleware.ContextMemberID)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return 0
}

func pagination(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "100"))
	if err != nil || size < 1 {
		size = 100
	}
	return size, (page - 1) * size
}

// writeError maps service errors onto status codes: validation problems are
// 400 with the full problem list, not-found sentinels are 404, the rest 500.
func writeError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "problems": verr.Problems})
		return
	}
	switch {
	case errors.Is(err, services.ErrRuleNotFound),
		errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrDealNotFound),
		errors.Is(err, services.ErrContactNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
