package effect

import (
	"encoding/json"
	"image/color"

	"github.com/urmzd/lightd/pkg/setting"
)

// Record is the JSON form of one effect.
type Record map[string]any

// TypeNumber returns the effect type number, or -1 when missing.
func (r Record) TypeNumber() int {
	return r.Int(keyType, -1)
}

// Core reports whether the record carries the core flag.
func (r Record) Core() bool {
	return r.Bool(keyCore, false)
}

func (r Record) Int(key string, def int) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint32:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

func (r Record) Float(key string, def float64) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

// Bool accepts JSON booleans and the numeric 0/1 form.
func (r Record) Bool(key string, def bool) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return def
}

func (r Record) String(key, def string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return def
}

func (r Record) Color(key string, def color.RGBA) color.RGBA {
	if _, ok := r[key]; !ok {
		return def
	}
	return setting.UnpackColor(uint32(r.Int(key, 0)))
}

func (r Record) Colors(key string) []color.RGBA {
	var out []color.RGBA
	switch v := r[key].(type) {
	case []any:
		for _, c := range v {
			out = append(out, setting.UnpackColor(uint32(Record{"c": c}.Int("c", 0))))
		}
	case []uint32:
		for _, c := range v {
			out = append(out, setting.UnpackColor(c))
		}
	}
	return out
}

func packColors(cs []color.RGBA) []uint32 {
	out := make([]uint32, len(cs))
	for i, c := range cs {
		out[i] = setting.PackColor(c)
	}
	return out
}
