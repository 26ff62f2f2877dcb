package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/lightd/pkg/api/types"
	"github.com/urmzd/lightd/pkg/effect"
)

// EffectsHandler handles effect list and navigation endpoints
type EffectsHandler struct {
	effects *effect.Manager
}

// NewEffectsHandler creates a new effects handler
func NewEffectsHandler(effects *effect.Manager) *EffectsHandler {
	return &EffectsHandler{effects: effects}
}

func (h *EffectsHandler) listing() types.EffectsResponse {
	list := h.effects.Summaries()
	resp := types.EffectsResponse{
		CurrentEffect:         h.effects.CurrentIndex(),
		MillisecondsRemaining: h.effects.TimeRemainingForCurrentEffect().Milliseconds(),
		EternalInterval:       h.effects.IsIntervalEternal(),
		EffectInterval:        h.effects.Interval().Milliseconds(),
		Effects:               make([]types.EffectSummary, len(list)),
	}
	for i, e := range list {
		resp.Effects[i] = summarize(e)
	}
	return resp
}

// List handles GET /effects
// @Summary      List effects
// @Description  Returns the effect list, the current effect and its remaining time
// @Tags         effects
// @Produce      json
// @Success      200  {object}  types.EffectsResponse
// @Router       /effects [get]
func (h *EffectsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.listing())
}

// Next handles POST /effects/next
// @Summary      Next effect
// @Description  Advances to the next enabled effect
// @Tags         effects
// @Produce      json
// @Success      200  {object}  types.EffectsResponse
// @Router       /effects/next [post]
func (h *EffectsHandler) Next(c *gin.Context) {
	h.effects.NextEffect()
	c.JSON(http.StatusOK, h.listing())
}

// Previous handles POST /effects/previous
// @Summary      Previous effect
// @Description  Moves back to the previous enabled effect
// @Tags         effects
// @Produce      json
// @Success      200  {object}  types.EffectsResponse
// @Router       /effects/previous [post]
func (h *EffectsHandler) Previous(c *gin.Context) {
	h.effects.PreviousEffect()
	c.JSON(http.StatusOK, h.listing())
}

// SetCurrent handles POST /effects/current
// @Summary      Set current effect
// @Description  Makes the effect at the given index current and restarts its timer
// @Tags         effects
// @Accept       json
// @Produce      json
// @Param        request  body      types.IndexRequest  true  "Effect index"
// @Success      200      {object}  types.EffectsResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request body"
// @Failure      404      {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/current [post]
func (h *EffectsHandler) SetCurrent(c *gin.Context) {
	var req types.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.effects.SetCurrentEffectIndex(*req.Index); err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listing())
}

// Enable handles POST /effects/:index/enable
// @Summary      Enable effect
// @Tags         effects
// @Produce      json
// @Param        index  path      int  true  "Effect index"
// @Success      200    {object}  types.EffectsResponse
// @Failure      404    {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/enable [post]
func (h *EffectsHandler) Enable(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	if err := h.effects.EnableEffect(i); err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listing())
}

// Disable handles POST /effects/:index/disable
// @Summary      Disable effect
// @Description  Disables an effect; disabling the current effect moves on to the next enabled one
// @Tags         effects
// @Produce      json
// @Param        index  path      int  true  "Effect index"
// @Success      200    {object}  types.EffectsResponse
// @Failure      404    {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/disable [post]
func (h *EffectsHandler) Disable(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	if err := h.effects.DisableEffect(i); err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listing())
}

// Move handles POST /effects/:index/move
// @Summary      Move effect
// @Description  Moves an effect to a new position; the current effect stays current
// @Tags         effects
// @Accept       json
// @Produce      json
// @Param        index    path      int                true  "Effect index"
// @Param        request  body      types.MoveRequest  true  "Target index"
// @Success      200      {object}  types.EffectsResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request body"
// @Failure      404      {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/move [post]
func (h *EffectsHandler) Move(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	var req types.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.effects.MoveEffect(i, *req.NewIndex); err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listing())
}

// Copy handles POST /effects/:index/copy
// @Summary      Copy effect
// @Description  Appends a disabled copy of an effect with the given settings applied
// @Tags         effects
// @Accept       json
// @Produce      json
// @Param        index    path      int                true   "Effect index"
// @Param        request  body      types.CopyRequest  false  "Settings for the copy"
// @Success      201      {object}  types.EffectSummary
// @Failure      400      {object}  types.ErrorResponse  "Effect cannot be copied or invalid settings"
// @Failure      404      {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/copy [post]
func (h *EffectsHandler) Copy(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	var req types.CopyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
	}

	added, err := h.effects.DuplicateEffect(i, stringValues(req.Settings))
	if err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summarize(added))
}

// Delete handles DELETE /effects/:index
// @Summary      Delete effect
// @Description  Removes an effect from the list; core effects cannot be deleted
// @Tags         effects
// @Produce      json
// @Param        index  path      int  true  "Effect index"
// @Success      200    {object}  types.EffectsResponse
// @Failure      400    {object}  types.ErrorResponse  "Core effect"
// @Failure      404    {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index} [delete]
func (h *EffectsHandler) Delete(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	if err := h.effects.DeleteEffect(i); err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listing())
}

// GetSettings handles GET /effects/:index/settings
// @Summary      Get effect settings
// @Tags         effects
// @Produce      json
// @Param        index  path      int  true  "Effect index"
// @Success      200    {object}  types.EffectSettingsResponse
// @Failure      404    {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/settings [get]
func (h *EffectsHandler) GetSettings(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	summary, values, _, err := h.effects.EffectSettings(i)
	if err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.EffectSettingsResponse{
		Effect:   summarize(summary),
		Settings: values,
	})
}

// GetSettingSpecs handles GET /effects/:index/settings/specs
// @Summary      Get effect setting specs
// @Description  Describes the settings an effect accepts
// @Tags         effects
// @Produce      json
// @Param        index  path      int  true  "Effect index"
// @Success      200    {object}  types.SettingSpecsResponse
// @Failure      404    {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/settings/specs [get]
func (h *EffectsHandler) GetSettingSpecs(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	_, _, specs, err := h.effects.EffectSettings(i)
	if err != nil {
		effectError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SettingSpecsResponse{Specs: specs})
}

// SetSettings handles POST /effects/:index/settings
// @Summary      Change effect settings
// @Description  Applies the given settings to an effect. Accepts JSON or form values.
// @Tags         effects
// @Accept       json
// @Produce      json
// @Param        index    path      int                true  "Effect index"
// @Param        request  body      map[string]string  true  "Setting values"
// @Success      200      {object}  types.EffectSettingsResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid setting"
// @Failure      404      {object}  types.ErrorResponse  "Effect not found"
// @Router       /effects/{index}/settings [post]
func (h *EffectsHandler) SetSettings(c *gin.Context) {
	i, ok := effectIndex(c)
	if !ok {
		return
	}
	values, err := readValues(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.effects.SetEffectSettings(i, values); err != nil {
		effectError(c, err)
		return
	}
	h.GetSettings(c)
}
