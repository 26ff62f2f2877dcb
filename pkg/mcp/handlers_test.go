package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/lightd/pkg/config"
	"github.com/urmzd/lightd/pkg/persist"
	"github.com/urmzd/lightd/pkg/system"
)

func newTestServer(t *testing.T) (*Server, *system.System) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Channels.LEDsPerStrip = 8
	cfg.Network.ListenAddr = "127.0.0.1:0"

	sys := system.New(cfg, persist.NewMemoryGateway(), system.Options{})
	require.NoError(t, sys.Load(context.Background()))
	return NewServer(sys.Effects, sys.Device, sys), sys
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestGetHealth(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleGetHealth(context.Background(), call(nil))
	require.NoError(t, err)
	out := decodeResult[GetHealthOutput](t, res)
	assert.Equal(t, "degraded", out.Status)
	assert.Equal(t, "stopped", out.Socket)
	assert.Equal(t, "unsynced", out.Clock)
}

func TestListAndNavigate(t *testing.T) {
	s, sys := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleListEffects(ctx, call(nil))
	require.NoError(t, err)
	list := decodeResult[ListEffectsOutput](t, res)
	assert.Equal(t, sys.Effects.EffectCount(), list.Count)
	assert.Equal(t, 0, list.Current)

	res, err = s.handleNextEffect(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, decodeResult[ListEffectsOutput](t, res).Current)

	res, err = s.handlePreviousEffect(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, decodeResult[ListEffectsOutput](t, res).Current)

	res, err = s.handleSetCurrentEffect(ctx, call(map[string]any{"index": float64(3)}))
	require.NoError(t, err)
	assert.Equal(t, 3, decodeResult[ListEffectsOutput](t, res).Current)
}

func TestIndexArgumentErrors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleSetCurrentEffect(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"index" is missing`)

	res, err = s.handleEnableEffect(ctx, call(map[string]any{"index": 1.5}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleDisableEffect(ctx, call(map[string]any{"index": float64(99)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "failed to disable effect")
}

func TestEnableDisableMoveDelete(t *testing.T) {
	s, sys := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleDisableEffect(ctx, call(map[string]any{"index": float64(2)}))
	require.NoError(t, err)
	assert.False(t, decodeResult[ListEffectsOutput](t, res).Effects[2].Enabled)

	res, err = s.handleEnableEffect(ctx, call(map[string]any{"index": "2"}))
	require.NoError(t, err)
	assert.True(t, decodeResult[ListEffectsOutput](t, res).Effects[2].Enabled)

	last, err := sys.Effects.EffectAt(sys.Effects.EffectCount() - 1)
	require.NoError(t, err)
	res, err = s.handleMoveEffect(ctx, call(map[string]any{"index": float64(sys.Effects.EffectCount() - 1), "new_index": float64(1)}))
	require.NoError(t, err)
	assert.Equal(t, last.Name(), decodeResult[ListEffectsOutput](t, res).Effects[1].Name)

	res, err = s.handleDeleteEffect(ctx, call(map[string]any{"index": float64(0)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCopyEffect(t *testing.T) {
	s, sys := newTestServer(t)
	ctx := context.Background()
	count := sys.Effects.EffectCount()

	res, err := s.handleCopyEffect(ctx, call(map[string]any{
		"index":    float64(0),
		"settings": map[string]any{"friendlyName": "Green", "color": "#00FF00"},
	}))
	require.NoError(t, err)
	out := decodeResult[CopyEffectOutput](t, res)
	assert.Equal(t, count, out.Effect.Index)
	assert.Equal(t, "Green", out.Effect.Name)
	assert.False(t, out.Effect.Enabled)
	assert.Equal(t, count+1, sys.Effects.EffectCount())

	res, err = s.handleCopyEffect(ctx, call(map[string]any{
		"index":    float64(0),
		"settings": map[string]any{"sparkle": true},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, count+1, sys.Effects.EffectCount())
}

func TestCopyEffectRejectsOutOfRange(t *testing.T) {
	s, sys := newTestServer(t)
	ctx := context.Background()
	count := sys.Effects.EffectCount()

	res, err := s.handleCopyEffect(ctx, call(map[string]any{
		"index":    float64(1),
		"settings": map[string]any{"speed": float64(1000), "density": float64(-3)},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, count, sys.Effects.EffectCount())
}

func TestEffectSettings(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGetEffectSettings(ctx, call(map[string]any{"index": float64(0)}))
	require.NoError(t, err)
	out := decodeResult[EffectSettingsOutput](t, res)
	assert.Contains(t, out.Settings, "friendlyName")
	assert.NotEmpty(t, out.Specs)

	res, err = s.handleSetEffectSettings(ctx, call(map[string]any{
		"index":    float64(0),
		"settings": map[string]any{"friendlyName": "Porch"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Porch", decodeResult[EffectSettingsOutput](t, res).Effect.Name)

	res, err = s.handleSetEffectSettings(ctx, call(map[string]any{"index": float64(0)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSetInterval(t *testing.T) {
	s, sys := newTestServer(t)

	res, err := s.handleSetInterval(context.Background(), call(map[string]any{"seconds": float64(0)}))
	require.NoError(t, err)
	assert.True(t, decodeResult[SetIntervalOutput](t, res).Eternal)
	assert.True(t, sys.Effects.IsIntervalEternal())
}

func TestDeviceSettingsAndColor(t *testing.T) {
	s, sys := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGetSettings(ctx, call(nil))
	require.NoError(t, err)
	assert.NotContains(t, decodeResult[SettingsOutput](t, res).Settings, "openWeatherApiKey")

	res, err = s.handleSetSettings(ctx, call(map[string]any{
		"settings": map[string]any{"brightness": float64(32)},
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(32), decodeResult[SettingsOutput](t, res).Settings["brightness"])
	assert.Equal(t, uint8(32), sys.Renderer.Stats().Brightness)

	res, err = s.handleSetSettings(ctx, call(map[string]any{
		"settings": map[string]any{"brightness": float64(0)},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleSetGlobalColor(ctx, call(map[string]any{"color": "#0000FF"}))
	require.NoError(t, err)
	assert.Equal(t, float64(0x0000FF), decodeResult[SettingsOutput](t, res).Settings["globalColor"])
	assert.True(t, sys.Effects.HasOverride())

	res, err = s.handleClearGlobalColor(ctx, call(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.False(t, sys.Effects.HasOverride())
}
