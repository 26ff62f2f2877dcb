package schema

import (
	"encoding/json"
	"fmt"

	"github.com/urmzd/lightd/pkg/setting"
)

// ForSettings builds a JSON Schema document describing an object whose
// properties are the given settings.
func ForSettings(specs []setting.Spec) json.RawMessage {
	props := make(map[string]any, len(specs))
	for _, s := range specs {
		p := map[string]any{}
		switch s.Type {
		case setting.Integer, setting.PositiveBigInteger:
			p["type"] = "integer"
			if s.Type == setting.PositiveBigInteger {
				p["minimum"] = 0
			}
		case setting.Float:
			p["type"] = "number"
		case setting.Boolean:
			p["type"] = "boolean"
		case setting.Color:
			p["type"] = "integer"
			p["minimum"] = 0
			p["maximum"] = 0xFFFFFF
		default:
			p["type"] = "string"
		}
		if s.Minimum != nil {
			p["minimum"] = *s.Minimum
		}
		if s.Maximum != nil {
			p["maximum"] = *s.Maximum
		}
		if s.ReadOnly {
			p["readOnly"] = true
		}
		props[s.Name] = p
	}

	doc, _ := json.Marshal(map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	})
	return doc
}

// ParseSettings converts raw string values to typed values and validates
// them against specs. Unknown names and read-only settings are rejected.
func (v *Validator) ParseSettings(specs []setting.Spec, values map[string]string) (map[string]any, error) {
	parsed := make(map[string]any, len(values))
	for name, raw := range values {
		s, ok := setting.Find(specs, name)
		if !ok {
			return nil, fmt.Errorf("unknown setting %q", name)
		}
		if s.ReadOnly {
			return nil, fmt.Errorf("setting %q is read-only", name)
		}
		val, err := setting.Parse(s, raw)
		if err != nil {
			return nil, err
		}
		parsed[name] = val
	}

	if err := v.Validate(ForSettings(specs), toJSONValues(parsed)); err != nil {
		return nil, err
	}
	return parsed, nil
}

// toJSONValues maps Go numeric types onto what the validator expects from
// decoded JSON.
func toJSONValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch n := v.(type) {
		case int64:
			out[k] = float64(n)
		case uint32:
			out[k] = float64(n)
		default:
			out[k] = v
		}
	}
	return out
}
