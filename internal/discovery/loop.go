package discovery

import (
	"context"
	"net/netip"
	"time"

	"github.com/rs/zerolog"
	"github.com/xvzc/lanwatch/internal/device"
	"github.com/xvzc/lanwatch/internal/logging"
	"github.com/xvzc/lanwatch/internal/session"
)

// Sink receives the device list of every cycle, typically an exporter.
type Sink interface {
	Devices(devices []device.Device) (string, error)
}

// Loop runs a Scanner periodically and publishes the result to a Registry.
type Loop struct {
	logger   zerolog.Logger
	scanner  Scanner
	registry *device.Registry
	target   netip.Prefix
	interval time.Duration
	sink     Sink
}

// NewLoop creates a discovery loop. sink may be nil.
func NewLoop(
	logger zerolog.Logger,
	scanner Scanner,
	registry *device.Registry,
	target netip.Prefix,
	interval time.Duration,
	sink Sink,
) *Loop {
	return &Loop{
		logger:   logger,
		scanner:  scanner,
		registry: registry,
		target:   target,
		interval: interval,
		sink:     sink,
	}
}

// Run performs a cycle immediately and then one per interval until ctx is
// done. A failed cycle is logged and leaves the registry untouched.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		_ = l.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single discovery cycle.
func (l *Loop) RunOnce(ctx context.Context) error {
	ctx = session.WithNewTraceID(ctx)
	logger := logging.WithLocalScope(ctx, l.logger, "cycle")

	logger.Debug().Str("target", l.target.String()).Msg("scanning network")

	devices, err := l.scanner.Scan(ctx, l.target)
	if err != nil {
		if ctx.Err() == nil {
			logging.ErrorUnwrapped(&logger, "discovery cycle failed", err)
		}
		return err
	}

	l.registry.Replace(devices)
	logger.Info().Int("devices", len(devices)).Msg("discovery cycle done")

	if l.sink == nil {
		return nil
	}

	path, err := l.sink.Devices(devices)
	if err != nil {
		logging.ErrorUnwrapped(&logger, "device export failed", err)
		return nil
	}
	logger.Info().Str("path", path).Msg("devices exported")

	return nil
}
