package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30*time.Second, cfg.EffectInterval())
	assert.Equal(t, time.Second, cfg.WriteDelay())
	assert.Equal(t, 2*time.Second, cfg.TimeBeforeLocal())
	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddress())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightd.toml")
	content := `
debug = true

[channels]
count = 4
leds_per_strip = 300
min_buffers = 2
max_buffers = 10

[effects]
interval = "0"
persistence_critical = true

[network]
listen_addr = ":5000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 4, cfg.Channels.Count)
	assert.Equal(t, 300, cfg.Channels.LEDsPerStrip)
	assert.Equal(t, 10, cfg.Channels.MaxBuffers)
	assert.Equal(t, time.Duration(0), cfg.EffectInterval())
	assert.True(t, cfg.Effects.PersistenceCritical)
	assert.Equal(t, ":5000", cfg.Network.ListenAddr)
	// untouched keys keep their defaults
	assert.Equal(t, 60, cfg.Channels.FramesPerSecond)
	assert.True(t, cfg.Effects.RememberCurrentEffect)
}

func TestLoadConfigRejectsBadBufferBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[channels]\nmin_buffers = 8\nmax_buffers = 4\n"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[effects]\ninterval = \"soon\"\n"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyCommandLineArgsOnlyOverridesSpecified(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args, err := ParseCommandLineArgs(fs, []string{"-listen", ":7000", "-audio-port", "/dev/ttyACM0"})
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.HTTP.Port = 9999
	cfg.ApplyCommandLineArgs(args)

	assert.Equal(t, ":7000", cfg.Network.ListenAddr)
	assert.True(t, cfg.AudioSerial.Enabled)
	assert.Equal(t, "/dev/ttyACM0", cfg.AudioSerial.Port)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.False(t, args.DebugSpecified)
}
