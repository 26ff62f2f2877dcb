package setting

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByType(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		value string
		want  any
	}{
		{"integer", Integer, "-12", int64(-12)},
		{"big", PositiveBigInteger, "4000000000", int64(4000000000)},
		{"float", Float, "0.25", 0.25},
		{"bool true", Boolean, "TRUE", true},
		{"bool one", Boolean, "1", true},
		{"bool other", Boolean, "yes", false},
		{"string", String, " porch ", "porch"},
		{"color decimal", Color, "16711680", uint32(0xFF0000)},
		{"color hex", Color, "#00FF00", uint32(0x00FF00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(New("x", "X", "", tt.typ), tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(New("speed", "Speed", "", Float), "fast")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Parse(New("count", "Count", "", PositiveBigInteger), "-1")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseColor("#1000000")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestColorPacking(t *testing.T) {
	c := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xFF}
	assert.Equal(t, uint32(0x123456), PackColor(c))
	assert.Equal(t, c, UnpackColor(0x123456))
}

func TestFind(t *testing.T) {
	specs := []Spec{
		New("a", "A", "", Integer),
		New("b", "B", "", String).WithRange(0, 1),
	}
	s, ok := Find(specs, "b")
	require.True(t, ok)
	assert.True(t, s.HasValidation)
	assert.Equal(t, "String", s.TypeName)

	_, ok = Find(specs, "c")
	assert.False(t, ok)
}
