package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "lightd.toml"

// Config holds the static board and deployment configuration.
type Config struct {
	Debug bool `toml:"debug"`

	Channels struct {
		Count           int `toml:"count"`
		LEDsPerStrip    int `toml:"leds_per_strip"`
		MinBuffers      int `toml:"min_buffers"`
		MaxBuffers      int `toml:"max_buffers"`
		FramesPerSecond int `toml:"frames_per_second"`
	} `toml:"channels"`

	Effects struct {
		// Interval is a duration string such as "30s"; "0" keeps the current effect forever.
		Interval              string `toml:"interval"`
		RememberCurrentEffect bool   `toml:"remember_current_effect"`
		PersistenceCritical   bool   `toml:"persistence_critical"`
		WriteDelay            string `toml:"write_delay"`
	} `toml:"effects"`

	Network struct {
		IncomingEnabled bool   `toml:"incoming_enabled"`
		ListenAddr      string `toml:"listen_addr"`
		NTPServer       string `toml:"ntp_server"`
		NTPInterval     string `toml:"ntp_interval"`
		TimeBeforeLocal string `toml:"time_before_local"`
	} `toml:"network"`

	HTTP struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"http"`

	Viewer struct {
		Enabled bool `toml:"enabled"`
	} `toml:"viewer"`

	AudioSerial struct {
		Enabled bool   `toml:"enabled"`
		Port    string `toml:"port"`
		Baud    int    `toml:"baud"`
	} `toml:"audio_serial"`

	DB struct {
		Path string `toml:"path"`
	} `toml:"db"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Channels.Count = 1
	cfg.Channels.LEDsPerStrip = 144
	cfg.Channels.MinBuffers = 3
	cfg.Channels.MaxBuffers = 30
	cfg.Channels.FramesPerSecond = 60
	cfg.Effects.Interval = "30s"
	cfg.Effects.RememberCurrentEffect = true
	cfg.Effects.WriteDelay = "1s"
	cfg.Network.IncomingEnabled = true
	cfg.Network.ListenAddr = ":49152"
	cfg.Network.NTPServer = "pool.ntp.org:123"
	cfg.Network.NTPInterval = "5m"
	cfg.Network.TimeBeforeLocal = "2s"
	cfg.HTTP.Host = "0.0.0.0"
	cfg.HTTP.Port = 8080
	cfg.Viewer.Enabled = true
	cfg.AudioSerial.Port = "/dev/ttyUSB0"
	cfg.AudioSerial.Baud = 2400
	return cfg
}

// LoadConfig reads configuration in this order of precedence:
//  1. the file at configPath, if given
//  2. DefaultConfigFile in the working directory, if present
//  3. built-in defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := NewConfig()

	filePath := configPath
	if filePath == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return cfg, nil
		}
		filePath = DefaultConfigFile
	}

	if _, err := toml.DecodeFile(filePath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", filePath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges and that every duration string parses.
func (c *Config) Validate() error {
	if c.Channels.Count < 1 || c.Channels.Count > 16 {
		return fmt.Errorf("channels.count must be between 1 and 16, got %d", c.Channels.Count)
	}
	if c.Channels.LEDsPerStrip < 1 {
		return fmt.Errorf("channels.leds_per_strip must be positive, got %d", c.Channels.LEDsPerStrip)
	}
	if c.Channels.MinBuffers < 1 || c.Channels.MaxBuffers < c.Channels.MinBuffers {
		return fmt.Errorf("invalid buffer bounds: min %d, max %d", c.Channels.MinBuffers, c.Channels.MaxBuffers)
	}
	if c.Channels.FramesPerSecond < 1 {
		return fmt.Errorf("channels.frames_per_second must be positive, got %d", c.Channels.FramesPerSecond)
	}

	for name, value := range map[string]string{
		"effects.interval":          c.Effects.Interval,
		"effects.write_delay":       c.Effects.WriteDelay,
		"network.ntp_interval":      c.Network.NTPInterval,
		"network.time_before_local": c.Network.TimeBeforeLocal,
	} {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	return nil
}

// EffectInterval returns how long an effect stays live; zero means forever.
func (c *Config) EffectInterval() time.Duration {
	d, _ := parseDuration(c.Effects.Interval)
	return d
}

// WriteDelay returns the persistence coalescing window.
func (c *Config) WriteDelay() time.Duration {
	d, _ := parseDuration(c.Effects.WriteDelay)
	return d
}

// NTPInterval returns how often the clock is resynchronized.
func (c *Config) NTPInterval() time.Duration {
	d, _ := parseDuration(c.Network.NTPInterval)
	return d
}

// TimeBeforeLocal returns how long network frames stay authoritative before
// local effects take over again.
func (c *Config) TimeBeforeLocal() time.Duration {
	d, _ := parseDuration(c.Network.TimeBeforeLocal)
	return d
}

// FrameInterval returns the render cadence.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Channels.FramesPerSecond)
}

// APIAddress returns the HTTP listen address.
func (c *Config) APIAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// ApplyCommandLineArgs overrides file values with explicitly given flags.
func (c *Config) ApplyCommandLineArgs(args CommandLineArgs) {
	if args.DebugSpecified {
		c.Debug = args.Debug
	}
	if args.DBPathSpecified {
		c.DB.Path = args.DBPath
	}
	if args.ListenAddrSpecified {
		c.Network.ListenAddr = args.ListenAddr
	}
	if args.HTTPPortSpecified {
		c.HTTP.Port = args.HTTPPort
	}
	if args.AudioPortSpecified {
		c.AudioSerial.Enabled = true
		c.AudioSerial.Port = args.AudioPort
	}
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
