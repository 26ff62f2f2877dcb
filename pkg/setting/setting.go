// Package setting describes the typed, named settings exposed by effects and
// by the device configuration.
package setting

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidValue indicates a setting value could not be parsed for its type.
var ErrInvalidValue = errors.New("invalid setting value")

// Type is the value type of a setting.
type Type int

const (
	Integer Type = iota
	PositiveBigInteger
	Float
	Boolean
	String
	Color
)

var typeNames = map[Type]string{
	Integer:            "Integer",
	PositiveBigInteger: "PositiveBigInteger",
	Float:              "Float",
	Boolean:            "Boolean",
	String:             "String",
	Color:              "Color",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Spec describes one setting.
type Spec struct {
	Name          string   `json:"name"`
	FriendlyName  string   `json:"friendlyName"`
	Description   string   `json:"description,omitempty"`
	Type          Type     `json:"type"`
	TypeName      string   `json:"typeName"`
	HasValidation bool     `json:"hasValidation"`
	Minimum       *float64 `json:"minimumValue,omitempty"`
	Maximum       *float64 `json:"maximumValue,omitempty"`
	ReadOnly      bool     `json:"readOnly,omitempty"`
}

// New returns a Spec with TypeName filled in.
func New(name, friendlyName, description string, t Type) Spec {
	return Spec{
		Name:         name,
		FriendlyName: friendlyName,
		Description:  description,
		Type:         t,
		TypeName:     t.String(),
	}
}

// WithRange returns a copy of s bounded to [min, max].
func (s Spec) WithRange(min, max float64) Spec {
	s.Minimum = &min
	s.Maximum = &max
	s.HasValidation = true
	return s
}

// Find returns the spec with the given name.
func Find(specs []Spec, name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Parse converts a wire string into the typed value for s.
// Integers come back as int64, floats as float64, colors as uint32 RGB.
func Parse(s Spec, value string) (any, error) {
	value = strings.TrimSpace(value)

	switch s.Type {
	case Integer:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, ErrInvalidValue)
		}
		return v, nil
	case PositiveBigInteger:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, ErrInvalidValue)
		}
		return int64(v), nil
	case Float:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, ErrInvalidValue)
		}
		return v, nil
	case Boolean:
		return ParseBool(value), nil
	case Color:
		c, err := ParseColor(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		return PackColor(c), nil
	default:
		return value, nil
	}
}

// ParseBool treats "true" (any case) and "1" as true and anything else as false.
func ParseBool(value string) bool {
	return strings.EqualFold(value, "true") || value == "1"
}

// ParseColor accepts decimal RGB integers and "#RRGGBB" strings.
func ParseColor(value string) (color.RGBA, error) {
	value = strings.TrimSpace(value)
	base := 10
	if strings.HasPrefix(value, "#") {
		value = value[1:]
		base = 16
	} else if strings.HasPrefix(value, "0x") {
		value = value[2:]
		base = 16
	}

	v, err := strconv.ParseUint(value, base, 32)
	if err != nil || v > 0xFFFFFF {
		return color.RGBA{}, ErrInvalidValue
	}
	return UnpackColor(uint32(v)), nil
}

// PackColor returns c as a 0xRRGGBB integer.
func PackColor(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// UnpackColor converts a 0xRRGGBB integer to an opaque color.
func UnpackColor(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}
