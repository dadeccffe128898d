package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/xvzc/lanwatch/internal/ptr"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, zerolog.InfoLevel, *cfg.General.LogLevel)
	assert.Equal(t, "", *cfg.Capture.Interface)
	assert.Equal(t, 500*time.Millisecond, *cfg.Capture.ReadTimeout)
	assert.True(t, *cfg.Capture.Promiscuous)
	assert.Equal(t, 0, *cfg.Capture.QueueCap)
	assert.Nil(t, cfg.Discovery.Target)
	assert.Equal(t, 5*time.Minute, *cfg.Discovery.Interval)
	assert.Equal(t, 100, *cfg.View.Window)
	assert.Equal(t, 10, *cfg.View.LogLines)
	assert.Equal(t, "exports", *cfg.Export.Dir)
	assert.Equal(t, time.Minute, *cfg.Monitor.Duration)
}

func TestConfigMerge(t *testing.T) {
	target := netip.MustParsePrefix("192.168.7.0/24")

	tcs := []struct {
		name      string
		origin    *Config
		overrides *Config
		assert    func(t *testing.T, merged *Config)
	}{
		{
			name:      "nil overrides clones origin",
			origin:    NewConfig(),
			overrides: nil,
			assert: func(t *testing.T, merged *Config) {
				assert.Equal(t, NewConfig(), merged)
			},
		},
		{
			name:      "nil origin clones overrides",
			origin:    nil,
			overrides: &Config{View: &ViewOptions{Window: ptr.FromValue(5)}},
			assert: func(t *testing.T, merged *Config) {
				assert.Equal(t, 5, *merged.View.Window)
				assert.Nil(t, merged.Capture)
			},
		},
		{
			name:   "set fields override",
			origin: NewConfig(),
			overrides: &Config{
				Capture:   &CaptureOptions{Interface: ptr.FromValue("wlan0")},
				Discovery: &DiscoveryOptions{Target: &target},
				General:   &GeneralOptions{LogLevel: ptr.FromValue(zerolog.TraceLevel)},
			},
			assert: func(t *testing.T, merged *Config) {
				assert.Equal(t, "wlan0", *merged.Capture.Interface)
				assert.Equal(t, 500*time.Millisecond, *merged.Capture.ReadTimeout)
				assert.Equal(t, target, *merged.Discovery.Target)
				assert.Equal(t, 5*time.Minute, *merged.Discovery.Interval)
				assert.Equal(t, zerolog.TraceLevel, *merged.General.LogLevel)
				assert.Equal(t, "lanwatch.log", *merged.General.LogFile)
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tc.assert(t, tc.origin.Merge(tc.overrides))
		})
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	origin := NewConfig()
	clone := origin.Clone()

	*clone.Capture.Interface = "eth9"
	*clone.View.Window = 1

	assert.Equal(t, "", *origin.Capture.Interface)
	assert.Equal(t, 100, *origin.View.Window)
	assert.NotSame(t, origin.General.LogLevel, clone.General.LogLevel)
}
