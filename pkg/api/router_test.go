package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/lightd/pkg/api/types"
	"github.com/urmzd/lightd/pkg/config"
	"github.com/urmzd/lightd/pkg/persist"
	"github.com/urmzd/lightd/pkg/system"
)

func newTestAPI(t *testing.T) (*system.System, http.Handler) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Channels.LEDsPerStrip = 8
	cfg.Network.ListenAddr = "127.0.0.1:0"

	sys := system.New(cfg, persist.NewMemoryGateway(), system.Options{})
	require.NoError(t, sys.Load(context.Background()))

	r := NewRouter(Services{
		Effects: sys.Effects,
		Device:  sys.Device,
		System:  sys,
		Viewer:  sys.Viewer,
	})
	return sys, r.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthDegradedWhileSocketStopped(t *testing.T) {
	sys, h := newTestAPI(t)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[types.HealthResponse](t, w)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "stopped", resp.Socket)
	assert.Equal(t, "unsynced", resp.Clock)

	sys.Wire.SetEnabled(false)
	w = do(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disabled", decode[types.HealthResponse](t, w).Socket)
}

func TestListEffects(t *testing.T) {
	sys, h := newTestAPI(t)

	w := do(t, h, http.MethodGet, "/api/v1/effects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.EffectsResponse](t, w)
	assert.Len(t, resp.Effects, sys.Effects.EffectCount())
	assert.Equal(t, 0, resp.CurrentEffect)
	assert.False(t, resp.EternalInterval)
	assert.Equal(t, int64(30000), resp.EffectInterval)
	assert.LessOrEqual(t, resp.MillisecondsRemaining, resp.EffectInterval)
	assert.True(t, resp.Effects[0].Core)
}

func TestNavigation(t *testing.T) {
	_, h := newTestAPI(t)

	resp := decode[types.EffectsResponse](t, do(t, h, http.MethodPost, "/api/v1/effects/next", nil))
	assert.Equal(t, 1, resp.CurrentEffect)

	resp = decode[types.EffectsResponse](t, do(t, h, http.MethodPost, "/api/v1/effects/previous", nil))
	assert.Equal(t, 0, resp.CurrentEffect)

	resp = decode[types.EffectsResponse](t, do(t, h, http.MethodPost, "/api/v1/effects/current", map[string]int{"index": 3}))
	assert.Equal(t, 3, resp.CurrentEffect)

	w := do(t, h, http.MethodPost, "/api/v1/effects/current", map[string]int{"index": 99})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[types.ErrorResponse](t, w).Error)

	w = do(t, h, http.MethodPost, "/api/v1/effects/current", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnableDisableMove(t *testing.T) {
	sys, h := newTestAPI(t)

	resp := decode[types.EffectsResponse](t, do(t, h, http.MethodPost, "/api/v1/effects/2/disable", nil))
	assert.False(t, resp.Effects[2].Enabled)

	resp = decode[types.EffectsResponse](t, do(t, h, http.MethodPost, "/api/v1/effects/2/enable", nil))
	assert.True(t, resp.Effects[2].Enabled)

	first, err := sys.Effects.EffectAt(0)
	require.NoError(t, err)
	resp = decode[types.EffectsResponse](t, do(t, h, http.MethodPost, "/api/v1/effects/0/move", map[string]int{"newIndex": 2}))
	assert.Equal(t, first.Name(), resp.Effects[2].Name)
	assert.Equal(t, 2, resp.CurrentEffect)

	w := do(t, h, http.MethodPost, "/api/v1/effects/x/enable", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyAndDelete(t *testing.T) {
	sys, h := newTestAPI(t)
	count := sys.Effects.EffectCount()

	w := do(t, h, http.MethodPost, "/api/v1/effects/0/copy", map[string]any{
		"settings": map[string]any{"friendlyName": "Green", "color": "#00FF00"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	copied := decode[types.EffectSummary](t, w)
	assert.Equal(t, count, copied.Index)
	assert.Equal(t, "Green", copied.Name)
	assert.False(t, copied.Enabled)
	assert.False(t, copied.Core)

	w = do(t, h, http.MethodDelete, "/api/v1/effects/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/api/v1/effects/"+strconv.Itoa(count), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[types.EffectsResponse](t, w).Effects, count)
}

func TestCopyRejectsUnknownSetting(t *testing.T) {
	sys, h := newTestAPI(t)
	count := sys.Effects.EffectCount()

	w := do(t, h, http.MethodPost, "/api/v1/effects/0/copy", map[string]any{
		"settings": map[string]any{"sparkle": true},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, count, sys.Effects.EffectCount())
}

func TestCopyRejectsOutOfRangeSetting(t *testing.T) {
	sys, h := newTestAPI(t)
	count := sys.Effects.EffectCount()

	w := do(t, h, http.MethodPost, "/api/v1/effects/1/copy", map[string]any{
		"settings": map[string]any{"speed": 1000},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode[types.ErrorResponse](t, w).Error)
	assert.Equal(t, count, sys.Effects.EffectCount())

	w = do(t, h, http.MethodPost, "/api/v1/effects/1/settings", map[string]string{"density": "-3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEffectSettings(t *testing.T) {
	_, h := newTestAPI(t)

	w := do(t, h, http.MethodGet, "/api/v1/effects/0/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.EffectSettingsResponse](t, w)
	assert.Contains(t, resp.Settings, "friendlyName")

	w = do(t, h, http.MethodGet, "/api/v1/effects/0/settings/specs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	specs := decode[types.SettingSpecsResponse](t, w)
	assert.NotEmpty(t, specs.Specs)

	w = do(t, h, http.MethodPost, "/api/v1/effects/0/settings", map[string]string{"friendlyName": "Porch"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Porch", decode[types.EffectSettingsResponse](t, w).Effect.Name)

	w = do(t, h, http.MethodPost, "/api/v1/effects/0/settings", map[string]string{"bogus": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/effects/42/settings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEffectSettingsAcceptForm(t *testing.T) {
	_, h := newTestAPI(t)

	form := url.Values{"friendlyName": {"Form Name"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/effects/1/settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Form Name", decode[types.EffectSettingsResponse](t, w).Effect.Name)
}

func TestDeviceSettings(t *testing.T) {
	sys, h := newTestAPI(t)

	w := do(t, h, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.SettingsResponse](t, w)
	assert.NotContains(t, resp.Settings, "openWeatherApiKey")
	assert.Equal(t, "lightd", resp.Settings["hostname"])

	w = do(t, h, http.MethodPost, "/api/v1/settings", map[string]any{"brightness": 64, "hostname": "porch"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[types.SettingsResponse](t, w)
	assert.Equal(t, float64(64), resp.Settings["brightness"])
	assert.Equal(t, uint8(64), sys.Renderer.Stats().Brightness)

	w = do(t, h, http.MethodPost, "/api/v1/settings", map[string]any{"brightness": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/settings/specs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[types.SettingSpecsResponse](t, w).Specs)
}

func TestValidatedSetting(t *testing.T) {
	_, h := newTestAPI(t)

	w := do(t, h, http.MethodPost, "/api/v1/settings/validated", map[string]any{"brightness": 10, "hostname": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Malformed request", decode[types.ErrorResponse](t, w).Message)

	w = do(t, h, http.MethodPost, "/api/v1/settings/validated", map[string]any{"sparkle": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Malformed request", decode[types.ErrorResponse](t, w).Message)

	w = do(t, h, http.MethodPost, "/api/v1/settings/validated", map[string]any{"brightness": 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[types.ErrorResponse](t, w).Message, "Brightness must be")

	w = do(t, h, http.MethodPost, "/api/v1/settings/validated", map[string]any{"powerLimit": 4500})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4500), decode[types.SettingsResponse](t, w).Settings["powerLimit"])
}

func TestInterval(t *testing.T) {
	sys, h := newTestAPI(t)

	w := do(t, h, http.MethodPost, "/api/v1/interval", map[string]int{"seconds": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.IntervalResponse](t, w).Eternal)
	assert.True(t, sys.Effects.IsIntervalEternal())

	w = do(t, h, http.MethodPost, "/api/v1/interval", map[string]int{"seconds": 45})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 45*time.Second, sys.Effects.Interval())

	w = do(t, h, http.MethodPost, "/api/v1/interval", map[string]int{"seconds": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGlobalColor(t *testing.T) {
	sys, h := newTestAPI(t)

	w := do(t, h, http.MethodPost, "/api/v1/color", map[string]any{"color": "#00FF00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0x00FF00), decode[types.SettingsResponse](t, w).Settings["globalColor"])
	assert.True(t, sys.Effects.HasOverride())

	w = do(t, h, http.MethodDelete, "/api/v1/color", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, sys.Effects.HasOverride())

	w = do(t, h, http.MethodPost, "/api/v1/color", map[string]any{"color": "green"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/color", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReset(t *testing.T) {
	sys, h := newTestAPI(t)
	require.NoError(t, sys.Effects.DisableEffect(1))

	w := do(t, h, http.MethodPost, "/api/v1/reset", map[string]bool{"effectsConfig": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reset", decode[types.StatusResponse](t, w).Status)

	e, err := sys.Effects.EffectAt(1)
	require.NoError(t, err)
	assert.True(t, e.Enabled())

	w = do(t, h, http.MethodPost, "/api/v1/reset", map[string]bool{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unchanged", decode[types.StatusResponse](t, w).Status)
}

func TestStatistics(t *testing.T) {
	sys, h := newTestAPI(t)

	w := do(t, h, http.MethodGet, "/api/v1/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[system.Statistics](t, w)
	assert.Equal(t, sys.Effects.EffectCount(), st.Effects.Count)
	assert.Len(t, st.Buffers, 1)
}

func TestDocsRedirect(t *testing.T) {
	_, h := newTestAPI(t)

	w := do(t, h, http.MethodGet, "/docs", nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/swagger/index.html", w.Header().Get("Location"))
}

func TestEventStream(t *testing.T) {
	sys, h := newTestAPI(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.NoError(t, sys.Effects.SetCurrentEffectIndex(4))

	for lines.Scan() {
		if lines.Text() == "event: current_effect_changed" {
			require.True(t, lines.Scan())
			assert.Contains(t, lines.Text(), `"index":4`)
			return
		}
	}
	t.Fatal("no current_effect_changed event")
}
