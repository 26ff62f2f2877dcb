package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/lightd/pkg/api/types"
	"github.com/urmzd/lightd/pkg/devicecfg"
	"github.com/urmzd/lightd/pkg/effect"
	"github.com/urmzd/lightd/pkg/setting"
)

// SettingsHandler handles device settings, effect interval and global color endpoints
type SettingsHandler struct {
	device  *devicecfg.Config
	effects *effect.Manager
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(device *devicecfg.Config, effects *effect.Manager) *SettingsHandler {
	return &SettingsHandler{device: device, effects: effects}
}

func (h *SettingsHandler) applyError(c *gin.Context, err error) {
	if errors.Is(err, devicecfg.ErrInvalidSetting) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{
		Error:   "settings_error",
		Message: err.Error(),
	})
}

// Get handles GET /settings
// @Summary      Get device settings
// @Description  Returns the device settings; sensitive values are omitted
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.SettingsResponse
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, types.SettingsResponse{Settings: h.device.Values(false)})
}

// GetSpecs handles GET /settings/specs
// @Summary      Get device setting specs
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.SettingSpecsResponse
// @Router       /settings/specs [get]
func (h *SettingsHandler) GetSpecs(c *gin.Context) {
	c.JSON(http.StatusOK, types.SettingSpecsResponse{Specs: devicecfg.SettingSpecs()})
}

// Set handles POST /settings
// @Summary      Change device settings
// @Description  Applies every recognised setting in the body. Nothing changes when any value is invalid.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "Setting values"
// @Success      200      {object}  types.SettingsResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid setting"
// @Router       /settings [post]
func (h *SettingsHandler) Set(c *gin.Context) {
	values, err := readValues(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.device.Apply(values); err != nil {
		h.applyError(c, err)
		return
	}
	h.Get(c)
}

// SetValidated handles POST /settings/validated
// @Summary      Change one validated setting
// @Description  Applies exactly one known setting after running its validator
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "A single setting value"
// @Success      200      {object}  types.SettingsResponse
// @Failure      400      {object}  types.ErrorResponse  "Malformed request or rejected value"
// @Router       /settings/validated [post]
func (h *SettingsHandler) SetValidated(c *gin.Context) {
	values, err := readValues(c)
	if err != nil || len(values) != 1 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Malformed request",
		})
		return
	}

	var name, value string
	for k, v := range values {
		name, value = k, v
	}
	if _, known := setting.Find(devicecfg.SettingSpecs(), name); !known {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Malformed request",
		})
		return
	}

	if ok, msg := devicecfg.Validate(name, value); !ok {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: msg,
		})
		return
	}

	if err := h.device.Apply(values); err != nil {
		h.applyError(c, err)
		return
	}
	h.Get(c)
}

// SetInterval handles POST /interval
// @Summary      Set effect interval
// @Description  Sets how long each effect stays live; 0 keeps the current effect forever
// @Tags         effects
// @Accept       json
// @Produce      json
// @Param        request  body      types.IntervalRequest  true  "Interval in seconds"
// @Success      200      {object}  types.IntervalResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request body"
// @Router       /interval [post]
func (h *SettingsHandler) SetInterval(c *gin.Context) {
	var req types.IntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	h.effects.SetInterval(time.Duration(*req.Seconds) * time.Second)
	c.JSON(http.StatusOK, types.IntervalResponse{
		Seconds: *req.Seconds,
		Eternal: h.effects.IsIntervalEternal(),
	})
}

// SetColor handles POST /color
// @Summary      Set global color
// @Description  Shows a solid color and derives the palette of palette effects from it
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      types.ColorRequest  true  "Color"
// @Success      200      {object}  types.SettingsResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid color"
// @Router       /color [post]
func (h *SettingsHandler) SetColor(c *gin.Context) {
	var req types.ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Color == nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "color is required",
		})
		return
	}

	if err := h.device.Apply(map[string]string{devicecfg.GlobalColorTag: stringValue(req.Color)}); err != nil {
		h.applyError(c, err)
		return
	}
	h.Get(c)
}

// ClearColor handles DELETE /color
// @Summary      Clear global color
// @Description  Removes the global color override and restores palette effects
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.SettingsResponse
// @Router       /color [delete]
func (h *SettingsHandler) ClearColor(c *gin.Context) {
	if err := h.device.Apply(map[string]string{devicecfg.ClearGlobalColorTag: "true"}); err != nil {
		h.applyError(c, err)
		return
	}
	h.Get(c)
}
