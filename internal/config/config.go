package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/ptr"
)

var _ merger[*Config] = (*Config)(nil)

type Config struct {
	General   *GeneralOptions   `toml:"general"`
	Capture   *CaptureOptions   `toml:"capture"`
	Discovery *DiscoveryOptions `toml:"discovery"`
	View      *ViewOptions      `toml:"view"`
	Export    *ExportOptions    `toml:"export"`
	Monitor   *MonitorOptions   `toml:"monitor"`
}

func (c *Config) UnmarshalTOML(data any) (err error) {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("non-table type config")
	}

	c.General = findStructFrom[GeneralOptions](m, "general", &err)
	c.Capture = findStructFrom[CaptureOptions](m, "capture", &err)
	c.Discovery = findStructFrom[DiscoveryOptions](m, "discovery", &err)
	c.View = findStructFrom[ViewOptions](m, "view", &err)
	c.Export = findStructFrom[ExportOptions](m, "export", &err)
	c.Monitor = findStructFrom[MonitorOptions](m, "monitor", &err)

	return err
}

func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	return &Config{
		General:   c.General.Clone(),
		Capture:   c.Capture.Clone(),
		Discovery: c.Discovery.Clone(),
		View:      c.View.Clone(),
		Export:    c.Export.Clone(),
		Monitor:   c.Monitor.Clone(),
	}
}

func (origin *Config) Merge(overrides *Config) *Config {
	if overrides == nil {
		return origin.Clone()
	}

	if origin == nil {
		return overrides.Clone()
	}

	return &Config{
		General:   origin.General.Merge(overrides.General),
		Capture:   origin.Capture.Merge(overrides.Capture),
		Discovery: origin.Discovery.Merge(overrides.Discovery),
		View:      origin.View.Merge(overrides.View),
		Export:    origin.Export.Merge(overrides.Export),
		Monitor:   origin.Monitor.Merge(overrides.Monitor),
	}
}

// NewConfig returns the defaults. Every option except the discovery target
// is set.
func NewConfig() *Config {
	return &Config{
		General: &GeneralOptions{
			LogLevel: ptr.FromValue(zerolog.InfoLevel),
			LogFile:  ptr.FromValue("lanwatch.log"),
		},
		Capture: &CaptureOptions{
			Interface:   ptr.FromValue(""),
			ReadTimeout: ptr.FromValue(500 * time.Millisecond),
			SnapLen:     ptr.FromValue(3200),
			Promiscuous: ptr.FromValue(true),
			QueueCap:    ptr.FromValue(0),
		},
		Discovery: &DiscoveryOptions{
			Interval:  ptr.FromValue(5 * time.Minute),
			ReplyWait: ptr.FromValue(2 * time.Second),
			OUIDB:     ptr.FromValue(""),
		},
		View: &ViewOptions{
			Window:   ptr.FromValue(100),
			LogLines: ptr.FromValue(10),
			Refresh:  ptr.FromValue(time.Second),
		},
		Export: &ExportOptions{
			Dir:     ptr.FromValue("exports"),
			GeoIPDB: ptr.FromValue(""),
		},
		Monitor: &MonitorOptions{
			Duration: ptr.FromValue(60 * time.Second),
			Export:   ptr.FromValue(""),
		},
	}
}
