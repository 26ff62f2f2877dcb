package devicecfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/jsonwriter"
	"github.com/urmzd/lightd/pkg/persist"
	"github.com/urmzd/lightd/pkg/schema"
	"github.com/urmzd/lightd/pkg/setting"
)

// ConfigKey is the persisted document key.
const ConfigKey = "device.cfg"

// EffectController receives the settings that change how effects render.
// *effect.Manager implements it.
type EffectController interface {
	SetGlobalColors(primary, secondary color.RGBA)
	ApplyGlobalColor(c color.RGBA)
	ClearRemoteColor(retainOverride bool)
	SetApplyGlobalColors(v bool)
	SetRememberCurrentEffect(v bool)
}

// OutputController receives brightness and power budget changes.
type OutputController interface {
	SetBrightness(b uint8)
	// SetPowerLimit caps the estimated draw; zero removes the cap.
	SetPowerLimit(milliwatts uint32)
}

// Config is the live, persisted device configuration.
type Config struct {
	mu       sync.RWMutex
	settings Settings

	validator *schema.Validator
	gateway   persist.Gateway
	writer    *jsonwriter.Writer
	writerIdx int
	effects   EffectController
	output    OutputController
}

// New returns a config holding defaults. gateway and writer may be nil, in
// which case nothing is persisted.
func New(defaults Settings, gateway persist.Gateway, writer *jsonwriter.Writer) *Config {
	c := &Config{
		settings:  defaults,
		validator: schema.NewValidator(),
		gateway:   gateway,
		writer:    writer,
		writerIdx: -1,
	}
	if gateway != nil && writer != nil {
		c.writerIdx = writer.RegisterWriter(ConfigKey, c.save)
	}
	return c
}

// Attach connects the controllers that settings changes are pushed to and
// pushes the current settings once. Either may be nil.
func (c *Config) Attach(effects EffectController, output OutputController) {
	c.mu.Lock()
	c.effects = effects
	c.output = output
	s := c.settings
	c.mu.Unlock()

	if effects != nil {
		effects.SetRememberCurrentEffect(s.RememberCurrentEffect)
		effects.SetGlobalColors(setting.UnpackColor(s.GlobalColor), setting.UnpackColor(s.SecondColor))
		effects.SetApplyGlobalColors(s.ApplyGlobalColors)
	}
	if output != nil {
		output.SetBrightness(uint8(s.Brightness))
		output.SetPowerLimit(uint32(s.PowerLimit))
	}
}

// Load reads the persisted settings over the defaults. A missing or
// unreadable document keeps the defaults and schedules a save.
func (c *Config) Load(ctx context.Context) error {
	if c.gateway == nil {
		return nil
	}
	raw, ok, err := c.gateway.LoadDocument(ctx, ConfigKey)
	if err != nil {
		return fmt.Errorf("failed to load device config: %w", err)
	}
	if !ok {
		c.flag()
		return nil
	}

	c.mu.Lock()
	s := c.settings
	if err := json.Unmarshal(raw, &s); err != nil {
		c.mu.Unlock()
		log.Warn().Err(err).Msg("Device config is corrupt, using defaults")
		c.flag()
		return nil
	}
	c.settings = s
	c.mu.Unlock()
	return nil
}

func (c *Config) flag() {
	if c.writer != nil && c.writerIdx >= 0 {
		c.writer.FlagWriter(c.writerIdx)
	}
}

func (c *Config) save(ctx context.Context) error {
	c.mu.RLock()
	raw, err := json.Marshal(c.settings)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode device config: %w", err)
	}
	return c.gateway.SaveDocument(ctx, ConfigKey, raw)
}

// Get returns a copy of the current settings.
func (c *Config) Get() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Values returns the settings keyed by name. Sensitive values are only
// included when asked for.
func (c *Config) Values(includeSensitive bool) map[string]any {
	s := c.Get()
	raw, _ := json.Marshal(s)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	if !includeSensitive {
		delete(out, OpenWeatherAPIKeyTag)
	}
	// JSON numbers decode as float64; report colors and integers exactly.
	out[GlobalColorTag] = s.GlobalColor
	out[SecondColorTag] = s.SecondColor
	out[PowerLimitTag] = s.PowerLimit
	out[BrightnessTag] = s.Brightness
	return out
}

var apiKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// Validate checks one setting value. It returns false and a user-facing
// message when the value is rejected. Settings without a validator pass.
func Validate(name, value string) (bool, string) {
	value = strings.TrimSpace(value)
	switch name {
	case BrightnessTag:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v < MinBrightness || v > MaxBrightness {
			return false, fmt.Sprintf("Brightness must be a number between %d and %d.", MinBrightness, MaxBrightness)
		}
	case PowerLimitTag:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || (v != 0 && v < MinPowerLimit) {
			return false, fmt.Sprintf("Power limit must be 0 or at least %d.", MinPowerLimit)
		}
	case OpenWeatherAPIKeyTag:
		if value != "" && !apiKeyPattern.MatchString(value) {
			return false, "Open Weather API key must be 32 hexadecimal characters."
		}
	}
	return true, ""
}

// HasValidator reports whether Validate does more than accept name.
func HasValidator(name string) bool {
	switch name {
	case BrightnessTag, PowerLimitTag, OpenWeatherAPIKeyTag:
		return true
	}
	return false
}

// ErrInvalidSetting wraps validation failures from Apply.
var ErrInvalidSetting = errors.New("invalid setting")

// Apply parses and stores every recognised setting in values, then pushes
// color, brightness and effect changes to the attached controllers.
// Nothing is changed when any value fails to parse or validate.
func (c *Config) Apply(values map[string]string) error {
	known := make(map[string]string, len(values))
	for name, v := range values {
		if _, ok := setting.Find(SettingSpecs(), name); ok {
			known[name] = v
		}
	}
	for name, v := range known {
		if ok, msg := Validate(name, v); !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSetting, msg)
		}
	}
	parsed, err := c.validator.ParseSettings(SettingSpecs(), known)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	if len(parsed) == 0 {
		return nil
	}

	c.mu.Lock()
	s := c.settings
	for name, v := range parsed {
		assign(&s, name, v)
	}
	_, hasGlobal := parsed[GlobalColorTag]
	_, hasSecond := parsed[SecondColorTag]
	clearColor, _ := parsed[ClearGlobalColorTag].(bool)
	_, applyGiven := parsed[ApplyGlobalColorsTag]
	old := c.settings
	c.settings = s
	effects, output := c.effects, c.output
	c.mu.Unlock()

	c.flag()

	if output != nil {
		if s.Brightness != old.Brightness {
			output.SetBrightness(uint8(s.Brightness))
		}
		if s.PowerLimit != old.PowerLimit {
			output.SetPowerLimit(uint32(s.PowerLimit))
		}
	}
	if effects == nil {
		return nil
	}
	if s.RememberCurrentEffect != old.RememberCurrentEffect {
		effects.SetRememberCurrentEffect(s.RememberCurrentEffect)
	}
	applyColorSettings(effects, old, s, hasGlobal, hasSecond, clearColor, applyGiven)
	return nil
}

// applyColorSettings pushes color changes. Clearing wins over everything
// else. When only the global color is given, the previous global color
// becomes the second one.
func applyColorSettings(effects EffectController, old, s Settings, hasGlobal, hasSecond, clearColor, applyGiven bool) {
	if clearColor {
		effects.ClearRemoteColor(false)
		return
	}
	if !hasGlobal && !hasSecond {
		if applyGiven {
			effects.SetApplyGlobalColors(s.ApplyGlobalColors)
		}
		return
	}

	primary := setting.UnpackColor(s.GlobalColor)
	secondary := setting.UnpackColor(s.SecondColor)
	if hasGlobal && !hasSecond {
		secondary = setting.UnpackColor(old.GlobalColor)
	}

	if s.ApplyGlobalColors {
		effects.SetGlobalColors(primary, secondary)
		effects.SetApplyGlobalColors(true)
		return
	}
	if applyGiven {
		effects.SetApplyGlobalColors(false)
	}
	effects.ApplyGlobalColor(primary)
}

func assign(s *Settings, name string, v any) {
	switch name {
	case HostnameTag:
		s.Hostname = v.(string)
	case LocationTag:
		s.Location = v.(string)
	case LocationIsZipTag:
		s.LocationIsZip = v.(bool)
	case CountryCodeTag:
		s.CountryCode = v.(string)
	case OpenWeatherAPIKeyTag:
		s.OpenWeatherAPIKey = v.(string)
	case TimeZoneTag:
		s.TimeZone = v.(string)
	case Use24HourClockTag:
		s.Use24HourClock = v.(bool)
	case UseCelsiusTag:
		s.UseCelsius = v.(bool)
	case NTPServerTag:
		s.NTPServer = v.(string)
	case RememberCurrentEffectTag:
		s.RememberCurrentEffect = v.(bool)
	case PowerLimitTag:
		s.PowerLimit = v.(int64)
	case BrightnessTag:
		s.Brightness = v.(int64)
	case ShowVUMeterTag:
		s.ShowVUMeter = v.(bool)
	case GlobalColorTag:
		s.GlobalColor = v.(uint32)
	case SecondColorTag:
		s.SecondColor = v.(uint32)
	case ApplyGlobalColorsTag:
		s.ApplyGlobalColors = v.(bool)
	}
}

// RemovePersisted deletes the stored document and restores defaults in
// memory. The next change writes a fresh document.
func (c *Config) RemovePersisted(ctx context.Context, defaults Settings) error {
	c.mu.Lock()
	c.settings = defaults
	c.mu.Unlock()

	if c.gateway == nil {
		return nil
	}
	if err := c.gateway.RemoveDocument(ctx, ConfigKey); err != nil {
		return fmt.Errorf("failed to remove device config: %w", err)
	}
	log.Info().Msg("Removed persisted device config")
	return nil
}
