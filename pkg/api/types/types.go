package types

import (
	"time"

	"github.com/urmzd/lightd/pkg/setting"
)

// --- Request DTOs ---

// IndexRequest is the request body for POST /effects/current
type IndexRequest struct {
	Index *int `json:"index" binding:"required"`
}

// MoveRequest is the request body for POST /effects/:index/move
type MoveRequest struct {
	NewIndex *int `json:"newIndex" binding:"required"`
}

// CopyRequest is the request body for POST /effects/:index/copy
type CopyRequest struct {
	Settings map[string]any `json:"settings"`
}

// IntervalRequest is the request body for POST /interval
type IntervalRequest struct {
	Seconds *int `json:"seconds" binding:"required,min=0"`
}

// ColorRequest is the request body for POST /color. Color is a decimal
// RGB integer or a "#RRGGBB" string.
type ColorRequest struct {
	Color any `json:"color"`
}

// ResetRequest is the request body for POST /reset
type ResetRequest struct {
	EffectsConfig bool `json:"effectsConfig"`
	DeviceConfig  bool `json:"deviceConfig"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StatusResponse acknowledges a request that has nothing else to return
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Socket    string    `json:"socket"`
	Clock     string    `json:"clock"`
	Timestamp time.Time `json:"timestamp"`
}

// EffectSummary describes one entry of the effect list
type EffectSummary struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Type    int    `json:"type"`
	Enabled bool   `json:"enabled"`
	Core    bool   `json:"core"`
}

// EffectsResponse is returned from GET /effects and the navigation endpoints
type EffectsResponse struct {
	CurrentEffect         int             `json:"currentEffect"`
	MillisecondsRemaining int64           `json:"millisecondsRemaining"`
	EternalInterval       bool            `json:"eternalInterval"`
	EffectInterval        int64           `json:"effectInterval"`
	Effects               []EffectSummary `json:"effects"`
}

// EffectSettingsResponse is returned from GET/POST /effects/:index/settings
type EffectSettingsResponse struct {
	Effect   EffectSummary  `json:"effect"`
	Settings map[string]any `json:"settings"`
}

// SettingSpecsResponse is returned from the settings/specs endpoints
type SettingSpecsResponse struct {
	Specs []setting.Spec `json:"specs"`
}

// SettingsResponse is returned from GET/POST /settings
type SettingsResponse struct {
	Settings map[string]any `json:"settings"`
}

// IntervalResponse is returned from POST /interval
type IntervalResponse struct {
	Seconds int  `json:"seconds"`
	Eternal bool `json:"eternal"`
}
