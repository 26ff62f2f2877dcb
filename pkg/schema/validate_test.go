package schema

import (
	"encoding/json"
	"testing"

	"github.com/urmzd/lightd/pkg/setting"
)

func brightnessSchema() json.RawMessage {
	return json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"hostname": {"type": "string"},
			"brightness": {"type": "integer", "minimum": 1, "maximum": 255}
		},
		"additionalProperties": false
	}`)
}

func testSpecs() []setting.Spec {
	return []setting.Spec{
		setting.New("brightness", "Brightness", "", setting.Integer).WithRange(1, 255),
		setting.New("speed", "Speed", "", setting.Float),
		setting.New("color", "Color", "", setting.Color),
		setting.New("enabled", "Enabled", "", setting.Boolean),
		{Name: "version", Type: setting.String, TypeName: "String", ReadOnly: true},
	}
}

func TestValidate_ValidPayload(t *testing.T) {
	v := NewValidator()

	err := v.Validate(brightnessSchema(), map[string]any{
		"hostname":   "porch",
		"brightness": float64(200),
	})
	if err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	v := NewValidator()

	err := v.Validate(brightnessSchema(), map[string]any{
		"brightness": float64(300),
	})
	if err == nil {
		t.Error("expected validation error for out-of-range brightness")
	}
}

func TestValidate_UnknownProperty(t *testing.T) {
	v := NewValidator()

	err := v.Validate(brightnessSchema(), map[string]any{
		"unknown": "value",
	})
	if err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	err := v.Validate(json.RawMessage(`{}`), map[string]any{
		"anything": "goes",
	})
	if err != nil {
		t.Errorf("empty schema should skip validation, got: %v", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()
	doc := ForSettings(testSpecs())

	if err := v.Validate(doc, map[string]any{"brightness": float64(10)}); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(ForSettings(testSpecs()), map[string]any{"brightness": float64(20)}); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 1 {
		t.Errorf("expected 1 cached schema, got %d", cacheSize)
	}
}

func TestParseSettings_Valid(t *testing.T) {
	v := NewValidator()

	got, err := v.ParseSettings(testSpecs(), map[string]string{
		"brightness": "128",
		"speed":      "1.5",
		"color":      "#FF0000",
		"enabled":    "true",
	})
	if err != nil {
		t.Fatalf("expected valid settings, got: %v", err)
	}
	if got["brightness"] != int64(128) {
		t.Errorf("brightness = %v, want 128", got["brightness"])
	}
	if got["color"] != uint32(0xFF0000) {
		t.Errorf("color = %v, want 0xFF0000", got["color"])
	}
	if got["enabled"] != true {
		t.Errorf("enabled = %v, want true", got["enabled"])
	}
}

func TestParseSettings_OutOfRange(t *testing.T) {
	v := NewValidator()

	if _, err := v.ParseSettings(testSpecs(), map[string]string{"brightness": "0"}); err == nil {
		t.Error("expected validation error for brightness below minimum")
	}
}

func TestParseSettings_Unknown(t *testing.T) {
	v := NewValidator()

	if _, err := v.ParseSettings(testSpecs(), map[string]string{"nope": "1"}); err == nil {
		t.Error("expected error for unknown setting")
	}
}

func TestParseSettings_ReadOnly(t *testing.T) {
	v := NewValidator()

	if _, err := v.ParseSettings(testSpecs(), map[string]string{"version": "2"}); err == nil {
		t.Error("expected error for read-only setting")
	}
}

func TestParseSettings_WrongType(t *testing.T) {
	v := NewValidator()

	if _, err := v.ParseSettings(testSpecs(), map[string]string{"speed": "fast"}); err == nil {
		t.Error("expected error for unparseable float")
	}
}
