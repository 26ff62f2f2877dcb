package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/urmzd/lightd/pkg/api/types"
	"github.com/urmzd/lightd/pkg/effect"
	"github.com/urmzd/lightd/pkg/setting"
)

var errNoValues = errors.New("request carries no values")

// readValues accepts either a form-encoded body or a flat JSON object and
// returns its fields as strings.
func readValues(c *gin.Context) (map[string]string, error) {
	if c.ContentType() == binding.MIMEPOSTForm {
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		out := make(map[string]string, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				out[k] = v[0]
			}
		}
		return out, nil
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errNoValues
	}
	return stringValues(body), nil
}

// stringValues renders JSON scalars the way the setting parsers expect.
func stringValues(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = stringValue(v)
	}
	return out
}

func stringValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// effectIndex parses the :index path parameter.
func effectIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid effect index",
		})
		return 0, false
	}
	return i, true
}

// effectError maps effect manager errors onto responses.
func effectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, effect.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "not_found",
			Message: "Effect not found",
		})
	case errors.Is(err, effect.ErrCoreEffect), errors.Is(err, effect.ErrNoJSONFactory):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, effect.ErrUnknownSetting), errors.Is(err, setting.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "effect_error",
			Message: err.Error(),
		})
	}
}

func summarize(s effect.Summary) types.EffectSummary {
	return types.EffectSummary{
		Index:   s.Index,
		Name:    s.Name,
		Type:    s.Number,
		Enabled: s.Enabled,
		Core:    s.Core,
	}
}
