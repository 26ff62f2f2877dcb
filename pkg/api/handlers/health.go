package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/lightd/pkg/api/types"
)

// HealthSource reports the state of the parts health depends on
type HealthSource interface {
	// SocketState is "listening", "stopped" or "disabled".
	SocketState() string
	// ClockState is "synced" or "unsynced".
	ClockState() string
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	source HealthSource
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(source HealthSource) *HealthHandler {
	return &HealthHandler{source: source}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the device. An enabled but stopped socket listener degrades it.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	socketStatus := h.source.SocketState()

	status := "healthy"
	httpStatus := http.StatusOK

	if socketStatus == "stopped" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Socket:    socketStatus,
		Clock:     h.source.ClockState(),
		Timestamp: time.Now(),
	})
}
