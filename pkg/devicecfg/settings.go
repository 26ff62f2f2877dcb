// Package devicecfg holds the runtime device settings that users change
// from the control surfaces, as opposed to the static board config.
package devicecfg

import (
	"github.com/urmzd/lightd/pkg/setting"
)

// Setting names, as used in requests and in the persisted document.
const (
	HostnameTag              = "hostname"
	LocationTag              = "location"
	LocationIsZipTag         = "locationIsZip"
	CountryCodeTag           = "countryCode"
	OpenWeatherAPIKeyTag     = "openWeatherApiKey"
	TimeZoneTag              = "timeZone"
	Use24HourClockTag        = "use24HourClock"
	UseCelsiusTag            = "useCelsius"
	NTPServerTag             = "ntpServer"
	RememberCurrentEffectTag = "rememberCurrentEffect"
	PowerLimitTag            = "powerLimit"
	BrightnessTag            = "brightness"
	ShowVUMeterTag           = "showVUMeter"
	GlobalColorTag           = "globalColor"
	SecondColorTag           = "secondColor"
	ApplyGlobalColorsTag     = "applyGlobalColors"
	ClearGlobalColorTag      = "clearGlobalColor"
)

const (
	MinBrightness = 1
	MaxBrightness = 255
	// MinPowerLimit is the smallest non-zero power limit in milliwatts.
	MinPowerLimit = 1000
)

// Settings is the persisted device configuration.
type Settings struct {
	Hostname              string `json:"hostname"`
	Location              string `json:"location"`
	LocationIsZip         bool   `json:"locationIsZip"`
	CountryCode           string `json:"countryCode"`
	OpenWeatherAPIKey     string `json:"openWeatherApiKey"`
	TimeZone              string `json:"timeZone"`
	Use24HourClock        bool   `json:"use24HourClock"`
	UseCelsius            bool   `json:"useCelsius"`
	NTPServer             string `json:"ntpServer"`
	RememberCurrentEffect bool   `json:"rememberCurrentEffect"`
	PowerLimit            int64  `json:"powerLimit"`
	Brightness            int64  `json:"brightness"`
	ShowVUMeter           bool   `json:"showVUMeter"`
	GlobalColor           uint32 `json:"globalColor"`
	SecondColor           uint32 `json:"secondColor"`
	ApplyGlobalColors     bool   `json:"applyGlobalColors"`
}

// DefaultSettings returns factory settings.
func DefaultSettings() Settings {
	return Settings{
		Hostname:              "lightd",
		CountryCode:           "US",
		TimeZone:              "UTC",
		NTPServer:             "pool.ntp.org",
		RememberCurrentEffect: true,
		Brightness:            MaxBrightness,
		GlobalColor:           0xFF0000,
		SecondColor:           0x0000FF,
	}
}

// SettingSpecs lists the settings in display order.
func SettingSpecs() []setting.Spec {
	return []setting.Spec{
		setting.New(HostnameTag, "Hostname", "The network name of the device", setting.String),
		setting.New(LocationTag, "Location", "City or postal code used by weather effects", setting.String),
		setting.New(LocationIsZipTag, "Location is postal code", "Treat the location as a postal code", setting.Boolean),
		setting.New(CountryCodeTag, "Country code", "ISO 3166 country code of the location", setting.String),
		withValidation(setting.New(OpenWeatherAPIKeyTag, "Open Weather API key", "Key for weather lookups; never returned by the device", setting.String)),
		setting.New(TimeZoneTag, "Time zone", "IANA time zone for clock effects", setting.String),
		setting.New(Use24HourClockTag, "Use 24 hour clock", "Show times in 24 hour format", setting.Boolean),
		setting.New(UseCelsiusTag, "Use Celsius", "Show temperatures in Celsius", setting.Boolean),
		setting.New(NTPServerTag, "NTP server", "Time server used to synchronize the clock", setting.String),
		setting.New(RememberCurrentEffectTag, "Remember current effect", "Resume the last shown effect after a restart", setting.Boolean),
		setting.New(PowerLimitTag, "Power limit", "Maximum power draw in milliwatts; 0 disables the limit", setting.Integer).WithRange(0, 1<<31-1),
		setting.New(BrightnessTag, "Brightness", "Overall LED brightness", setting.Integer).WithRange(MinBrightness, MaxBrightness),
		setting.New(ShowVUMeterTag, "Show VU meter", "Overlay the audio level on effects that support it", setting.Boolean),
		setting.New(GlobalColorTag, "Global color", "Primary color for palette effects", setting.Color),
		setting.New(SecondColorTag, "Second color", "Secondary color for palette effects", setting.Color),
		setting.New(ApplyGlobalColorsTag, "Apply global colors", "Use the global colors on palette effects", setting.Boolean),
		setting.New(ClearGlobalColorTag, "Clear global color", "Drop the remote global color", setting.Boolean),
	}
}

func withValidation(s setting.Spec) setting.Spec {
	s.HasValidation = true
	return s
}
