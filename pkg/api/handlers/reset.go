package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/lightd/pkg/api/types"
)

// Resetter removes persisted configuration
type Resetter interface {
	Reset(ctx context.Context, effectsConfig, deviceConfig bool) error
}

// ResetHandler handles the configuration reset endpoint
type ResetHandler struct {
	resetter Resetter
}

// NewResetHandler creates a new reset handler
func NewResetHandler(resetter Resetter) *ResetHandler {
	return &ResetHandler{resetter: resetter}
}

// Reset handles POST /reset
// @Summary      Reset configuration
// @Description  Removes the persisted effect list and/or device settings and restores defaults
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      types.ResetRequest  true  "What to reset"
// @Success      200      {object}  types.StatusResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request body"
// @Failure      500      {object}  types.ErrorResponse  "Reset failed"
// @Router       /reset [post]
func (h *ResetHandler) Reset(c *gin.Context) {
	var req types.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if !req.EffectsConfig && !req.DeviceConfig {
		c.JSON(http.StatusOK, types.StatusResponse{Status: "unchanged"})
		return
	}

	if err := h.resetter.Reset(c.Request.Context(), req.EffectsConfig, req.DeviceConfig); err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "reset_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.StatusResponse{Status: "reset"})
}
