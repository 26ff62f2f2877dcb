package mcp

import (
	"github.com/urmzd/lightd/pkg/effect"
	"github.com/urmzd/lightd/pkg/setting"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or degraded)"`
	Socket    string `json:"socket" jsonschema:"description=Incoming color data socket (listening/stopped/disabled)"`
	Clock     string `json:"clock" jsonschema:"description=Clock synchronization (synced/unsynced)"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Effect List Tools ---

// EffectInfo represents an effect in tool outputs
type EffectInfo struct {
	Index   int    `json:"index" jsonschema:"description=Position in the effect list"`
	Name    string `json:"name" jsonschema:"description=Friendly name"`
	Type    int    `json:"type" jsonschema:"description=Effect type number"`
	Enabled bool   `json:"enabled" jsonschema:"description=Whether the effect takes part in rotation"`
	Core    bool   `json:"core" jsonschema:"description=Core effects cannot be deleted"`
}

// ListEffectsOutput is the output for list_effects and the navigation tools
type ListEffectsOutput struct {
	Effects     []EffectInfo `json:"effects" jsonschema:"description=The effect list"`
	Count       int          `json:"count" jsonschema:"description=Number of effects"`
	Current     int          `json:"current" jsonschema:"description=Index of the current effect"`
	RemainingMs int64        `json:"remaining_ms" jsonschema:"description=Time left for the current effect"`
	IntervalMs  int64        `json:"interval_ms" jsonschema:"description=Time each effect is shown; 0 means forever"`
	Override    bool         `json:"override" jsonschema:"description=Whether a global color is shown instead of the current effect"`
}

// CopyEffectOutput is the output for the copy_effect tool
type CopyEffectOutput struct {
	Effect  EffectInfo `json:"effect" jsonschema:"description=The appended copy"`
	Message string     `json:"message" jsonschema:"description=Status message"`
}

// --- Effect Settings Tools ---

// EffectSettingsOutput is the output for the effect settings tools
type EffectSettingsOutput struct {
	Effect   EffectInfo     `json:"effect" jsonschema:"description=The effect"`
	Settings map[string]any `json:"settings" jsonschema:"description=Current setting values"`
	Specs    []setting.Spec `json:"specs,omitempty" jsonschema:"description=Setting descriptions"`
}

// SetIntervalOutput is the output for the set_interval tool
type SetIntervalOutput struct {
	Seconds int  `json:"seconds" jsonschema:"description=New interval in seconds"`
	Eternal bool `json:"eternal" jsonschema:"description=Whether effects no longer rotate"`
}

// --- Device Settings Tools ---

// SettingsOutput is the output for the device settings tools
type SettingsOutput struct {
	Settings map[string]any `json:"settings" jsonschema:"description=Device settings; sensitive values are omitted"`
}

// --- Helper conversions ---

// EffectToInfo converts an effect summary to EffectInfo
func EffectToInfo(s effect.Summary) EffectInfo {
	return EffectInfo{
		Index:   s.Index,
		Name:    s.Name,
		Type:    s.Number,
		Enabled: s.Enabled,
		Core:    s.Core,
	}
}
