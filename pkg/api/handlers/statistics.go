package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/lightd/pkg/system"
)

// StatisticsSource collects runtime statistics
type StatisticsSource interface {
	Statistics() system.Statistics
}

// StatisticsHandler handles the statistics endpoint
type StatisticsHandler struct {
	source StatisticsSource
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(source StatisticsSource) *StatisticsHandler {
	return &StatisticsHandler{source: source}
}

// Statistics handles GET /statistics
// @Summary      Runtime statistics
// @Description  Buffer depths, packet counters, frame rate, power draw, clock sync and reader state
// @Tags         health
// @Produce      json
// @Success      200  {object}  system.Statistics
// @Router       /statistics [get]
func (h *StatisticsHandler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.source.Statistics())
}
