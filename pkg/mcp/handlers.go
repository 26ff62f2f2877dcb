package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/lightd/pkg/devicecfg"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:    "healthy",
		Socket:    "unknown",
		Clock:     "unknown",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if s.health != nil {
		out.Socket = s.health.SocketState()
		out.Clock = s.health.ClockState()
		if out.Socket == "stopped" {
			out.Status = "degraded"
		}
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) listing() ListEffectsOutput {
	list := s.effects.Summaries()
	out := ListEffectsOutput{
		Effects:     make([]EffectInfo, len(list)),
		Count:       len(list),
		Current:     s.effects.CurrentIndex(),
		RemainingMs: s.effects.TimeRemainingForCurrentEffect().Milliseconds(),
		IntervalMs:  s.effects.Interval().Milliseconds(),
		Override:    s.effects.HasOverride(),
	}
	for i, e := range list {
		out.Effects[i] = EffectToInfo(e)
	}
	return out
}

func (s *Server) handleListEffects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(s.listing())), nil
}

func (s *Server) handleNextEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.effects.NextEffect()
	return mcp.NewToolResultText(formatJSON(s.listing())), nil
}

func (s *Server) handlePreviousEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.effects.PreviousEffect()
	return mcp.NewToolResultText(formatJSON(s.listing())), nil
}

func (s *Server) handleSetCurrentEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withIndex(request, "failed to set current effect", s.effects.SetCurrentEffectIndex)
}

func (s *Server) handleEnableEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withIndex(request, "failed to enable effect", s.effects.EnableEffect)
}

func (s *Server) handleDisableEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withIndex(request, "failed to disable effect", s.effects.DisableEffect)
}

func (s *Server) handleDeleteEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withIndex(request, "failed to delete effect", s.effects.DeleteEffect)
}

// withIndex runs fn with the index argument and replies with the listing.
func (s *Server) withIndex(request mcp.CallToolRequest, failure string, fn func(int) error) (*mcp.CallToolResult, error) {
	index, err := requiredInt(request, "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := fn(index); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", failure, err)), nil
	}
	return mcp.NewToolResultText(formatJSON(s.listing())), nil
}

func (s *Server) handleMoveEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := requiredInt(request, "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newIndex, err := requiredInt(request, "new_index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.effects.MoveEffect(index, newIndex); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to move effect: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(s.listing())), nil
}

func (s *Server) handleCopyEffect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := requiredInt(request, "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	settings, _ := request.GetArguments()["settings"].(map[string]any)

	added, err := s.effects.DuplicateEffect(index, stringValues(settings))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to copy effect: %s", err)), nil
	}

	info := EffectToInfo(added)
	out := CopyEffectOutput{
		Effect:  info,
		Message: fmt.Sprintf("Effect %q added at index %d", info.Name, info.Index),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetEffectSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := requiredInt(request, "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.effectSettings(index)
}

func (s *Server) effectSettings(index int) (*mcp.CallToolResult, error) {
	summary, values, specs, err := s.effects.EffectSettings(index)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("effect not found: %s", err)), nil
	}
	out := EffectSettingsOutput{
		Effect:   EffectToInfo(summary),
		Settings: values,
		Specs:    specs,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetEffectSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := requiredInt(request, "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	settings, err := requiredObject(request, "settings")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.effects.SetEffectSettings(index, stringValues(settings)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to change effect settings: %s", err)), nil
	}
	return s.effectSettings(index)
}

func (s *Server) handleSetInterval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seconds, err := requiredInt(request, "seconds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.effects.SetInterval(time.Duration(seconds) * time.Second)
	out := SetIntervalOutput{
		Seconds: seconds,
		Eternal: s.effects.IsIntervalEternal(),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(SettingsOutput{Settings: s.device.Values(false)})), nil
}

func (s *Server) handleSetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := requiredObject(request, "settings")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.applySettings(stringValues(settings))
}

func (s *Server) handleSetGlobalColor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, ok := request.GetArguments()["color"]
	if !ok || v == nil {
		return mcp.NewToolResultError(`required parameter "color" is missing`), nil
	}
	return s.applySettings(map[string]string{devicecfg.GlobalColorTag: stringValue(v)})
}

func (s *Server) handleClearGlobalColor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.applySettings(map[string]string{devicecfg.ClearGlobalColorTag: "true"})
}

func (s *Server) applySettings(values map[string]string) (*mcp.CallToolResult, error) {
	if err := s.device.Apply(values); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to change settings: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(SettingsOutput{Settings: s.device.Values(false)})), nil
}

// --- helpers ---

func requiredInt(request mcp.CallToolRequest, key string) (int, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < 0 {
			return 0, fmt.Errorf("parameter %q must be a non-negative integer", key)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("parameter %q must be a non-negative integer", key)
		}
		return i, nil
	}
	return 0, fmt.Errorf("parameter %q must be a non-negative integer", key)
}

func requiredObject(request mcp.CallToolRequest, key string) (map[string]any, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("required parameter %q is missing", key)
	}
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, fmt.Errorf("parameter %q must be a non-empty object", key)
	}
	return m, nil
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

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
