package devicecfg

import (
	"context"
	"encoding/json"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/lightd/pkg/jsonwriter"
	"github.com/urmzd/lightd/pkg/persist"
)

type fakeEffects struct {
	calls    []string
	primary  color.RGBA
	second   color.RGBA
	applied  color.RGBA
	apply    bool
	remember bool
}

func (f *fakeEffects) SetGlobalColors(p, s color.RGBA) {
	f.calls = append(f.calls, "SetGlobalColors")
	f.primary, f.second = p, s
}

func (f *fakeEffects) ApplyGlobalColor(c color.RGBA) {
	f.calls = append(f.calls, "ApplyGlobalColor")
	f.applied = c
}

func (f *fakeEffects) ClearRemoteColor(bool) {
	f.calls = append(f.calls, "ClearRemoteColor")
}

func (f *fakeEffects) SetApplyGlobalColors(v bool) {
	f.calls = append(f.calls, "SetApplyGlobalColors")
	f.apply = v
}

func (f *fakeEffects) SetRememberCurrentEffect(v bool) {
	f.calls = append(f.calls, "SetRememberCurrentEffect")
	f.remember = v
}

type fakeOutput struct {
	b     uint8
	limit uint32
}

func (f *fakeOutput) SetBrightness(b uint8)           { f.b = b }
func (f *fakeOutput) SetPowerLimit(milliwatts uint32) { f.limit = milliwatts }

func attached(t *testing.T) (*Config, *fakeEffects, *fakeOutput) {
	t.Helper()
	c := New(DefaultSettings(), nil, nil)
	fx, fb := &fakeEffects{}, &fakeOutput{}
	c.Attach(fx, fb)
	fx.calls = nil
	return c, fx, fb
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{BrightnessTag, "128", true},
		{BrightnessTag, "0", false},
		{BrightnessTag, "256", false},
		{BrightnessTag, "bright", false},
		{PowerLimitTag, "0", true},
		{PowerLimitTag, "999", false},
		{PowerLimitTag, "4500", true},
		{OpenWeatherAPIKeyTag, "0123456789abcdef0123456789ABCDEF", true},
		{OpenWeatherAPIKeyTag, "short", false},
		{HostnameTag, "anything", true},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			ok, msg := Validate(tt.name, tt.value)
			assert.Equal(t, tt.ok, ok)
			if !ok {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestHasValidatorMatchesSpecs(t *testing.T) {
	for _, s := range SettingSpecs() {
		if HasValidator(s.Name) {
			assert.True(t, s.HasValidation, s.Name)
		}
	}
}

func TestAttachPushesCurrentSettings(t *testing.T) {
	c := New(DefaultSettings(), nil, nil)
	fx, fb := &fakeEffects{}, &fakeOutput{}
	c.Attach(fx, fb)

	assert.True(t, fx.remember)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, fx.primary)
	assert.Equal(t, uint8(MaxBrightness), fb.b)
}

func TestApplyStoresTypedValues(t *testing.T) {
	c, _, fb := attached(t)
	require.NoError(t, c.Apply(map[string]string{
		HostnameTag:   "porch",
		BrightnessTag: "64",
		UseCelsiusTag: "true",
		"unrelated":   "ignored",
	}))

	s := c.Get()
	assert.Equal(t, "porch", s.Hostname)
	assert.Equal(t, int64(64), s.Brightness)
	assert.True(t, s.UseCelsius)
	assert.Equal(t, uint8(64), fb.b)
}

func TestApplyPushesPowerLimit(t *testing.T) {
	c, _, fb := attached(t)
	require.NoError(t, c.Apply(map[string]string{PowerLimitTag: "4500"}))
	assert.Equal(t, uint32(4500), fb.limit)
}

func TestApplyRejectsInvalidWithoutChanges(t *testing.T) {
	c, _, _ := attached(t)
	err := c.Apply(map[string]string{HostnameTag: "porch", BrightnessTag: "0"})
	assert.ErrorIs(t, err, ErrInvalidSetting)
	assert.Equal(t, "lightd", c.Get().Hostname)
}

func TestApplyGlobalColorShowsOverride(t *testing.T) {
	c, fx, _ := attached(t)
	require.NoError(t, c.Apply(map[string]string{GlobalColorTag: "#00FF00"}))

	assert.Equal(t, []string{"ApplyGlobalColor"}, fx.calls)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, fx.applied)
	assert.Equal(t, uint32(0x00FF00), c.Get().GlobalColor)
}

func TestApplyGlobalColorsToPalettes(t *testing.T) {
	c, fx, _ := attached(t)
	require.NoError(t, c.Apply(map[string]string{
		GlobalColorTag:       "255",
		ApplyGlobalColorsTag: "true",
	}))

	assert.Equal(t, []string{"SetGlobalColors", "SetApplyGlobalColors"}, fx.calls)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, fx.primary)
	// the previous global color moves to second place
	assert.Equal(t, color.RGBA{R: 255, A: 255}, fx.second)
	assert.True(t, fx.apply)
}

func TestClearGlobalColorWins(t *testing.T) {
	c, fx, _ := attached(t)
	require.NoError(t, c.Apply(map[string]string{
		GlobalColorTag:      "#123456",
		ClearGlobalColorTag: "true",
	}))
	assert.Equal(t, []string{"ClearRemoteColor"}, fx.calls)
}

func TestValuesHidesSensitive(t *testing.T) {
	c, _, _ := attached(t)
	require.NoError(t, c.Apply(map[string]string{OpenWeatherAPIKeyTag: "0123456789abcdef0123456789abcdef"}))

	assert.NotContains(t, c.Values(false), OpenWeatherAPIKeyTag)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", c.Values(true)[OpenWeatherAPIKeyTag])
	assert.Equal(t, uint32(0xFF0000), c.Values(false)[GlobalColorTag])
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	gw := persist.NewMemoryGateway()
	w := jsonwriter.New(time.Hour)

	c := New(DefaultSettings(), gw, w)
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Apply(map[string]string{HostnameTag: "attic"}))
	require.NoError(t, w.FlushWrites(ctx, false))

	raw, ok, err := gw.LoadDocument(ctx, ConfigKey)
	require.NoError(t, err)
	require.True(t, ok)
	var stored Settings
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "attic", stored.Hostname)

	c2 := New(DefaultSettings(), gw, jsonwriter.New(time.Hour))
	require.NoError(t, c2.Load(ctx))
	assert.Equal(t, "attic", c2.Get().Hostname)

	require.NoError(t, c2.RemovePersisted(ctx, DefaultSettings()))
	_, ok, _ = gw.LoadDocument(ctx, ConfigKey)
	assert.False(t, ok)
	assert.Equal(t, "lightd", c2.Get().Hostname)
}

func TestCorruptDocumentKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	gw := persist.NewMemoryGateway()
	require.NoError(t, gw.SaveDocument(ctx, ConfigKey, json.RawMessage(`{"brightness":"high"}`)))

	c := New(DefaultSettings(), gw, jsonwriter.New(time.Hour))
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, int64(MaxBrightness), c.Get().Brightness)
}
