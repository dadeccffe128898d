package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xvzc/lanwatch/internal/activity"
	"github.com/xvzc/lanwatch/internal/capture"
	"github.com/xvzc/lanwatch/internal/config"
	"github.com/xvzc/lanwatch/internal/dashboard"
	"github.com/xvzc/lanwatch/internal/device"
	"github.com/xvzc/lanwatch/internal/discovery"
	"github.com/xvzc/lanwatch/internal/export"
	"github.com/xvzc/lanwatch/internal/feed"
	"github.com/xvzc/lanwatch/internal/geo"
	"github.com/xvzc/lanwatch/internal/logging"
	"github.com/xvzc/lanwatch/internal/packet"
	"github.com/xvzc/lanwatch/internal/pipeline"
	"github.com/xvzc/lanwatch/internal/ptr"
	"github.com/xvzc/lanwatch/internal/session"
)

// Set by ldflags.
var (
	version = "dev"
	commit  = "unknown"
	build   = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cmd := config.CreateCommand(runApp, version, commit, build)
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lanwatch: %s\n", err)
		os.Exit(1)
	}
}

func runApp(ctx context.Context, mode config.Mode, configDir string, cfg *config.Config) error {
	out, closeOut, err := logOutput(mode, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	logging.SetGlobalLogger(ctx, *cfg.General.LogLevel, out)
	logger := logging.WithScope(log.Logger, "MAIN")

	if configDir != "" {
		logger.Info().Str("path", configDir).Msg("config file loaded")
	}

	iface, err := packet.InterfaceByName(ptr.FromPtr(cfg.Capture.Interface))
	if err != nil {
		return err
	}
	ctx = session.WithInterface(ctx, iface.Name)

	switch mode {
	case config.ModeScan:
		return runScan(ctx, cfg, iface)
	case config.ModeMonitor:
		return runMonitor(ctx, cfg, iface)
	case config.ModeDashboard:
		return runDashboard(ctx, cfg, iface)
	}

	return fmt.Errorf("unknown mode %s", mode)
}

// logOutput keeps the terminal free for the dashboard by logging to a file.
func logOutput(mode config.Mode, cfg *config.Config) (io.Writer, func(), error) {
	if mode != config.ModeDashboard {
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(*cfg.General.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

func runScan(ctx context.Context, cfg *config.Config, iface *net.Interface) error {
	exporter, closeGeo := createExporter(cfg)
	defer closeGeo()

	loop, closeLoop, err := createDiscovery(ctx, cfg, iface, device.NewRegistry(), exporter)
	if err != nil {
		return err
	}
	defer closeLoop()

	fmt.Printf("Scanning the network every %s, press 'CTRL + c' to quit\n", *cfg.Discovery.Interval)
	loop.Run(ctx)

	return nil
}

func runMonitor(ctx context.Context, cfg *config.Config, iface *net.Interface) error {
	logger := logging.WithScope(log.Logger, "MONITOR")

	ctrl, closeCtrl, err := createController(cfg, iface)
	if err != nil {
		return err
	}
	defer closeCtrl()

	duration := *cfg.Monitor.Duration
	fmt.Printf("Monitoring %s for %s, press 'CTRL + c' to stop\n", iface.Name, duration)

	ctrl.Start(ctx)

	timer := time.NewTimer(duration)
	defer timer.Stop()

	ticker := time.NewTicker(*cfg.View.Refresh)
	defer ticker.Stop()

	logged := 0
	drain := func() {
		ctrl.DrainTick()
		all := ctrl.Store().All()
		for _, r := range all[logged:] {
			logRecord(logger, r)
		}
		logged = len(all)
	}

	var message string
loop:
	for {
		select {
		case <-ctx.Done():
			message = "Monitoring stopped by user."
			break loop
		case <-timer.C:
			message = "Monitoring complete."
			break loop
		case <-ticker.C:
			drain()
			if ctrl.State() == capture.StateIdle {
				message = "Monitoring aborted."
				break loop
			}
		}
	}

	ctrl.Stop()
	drain()

	fmt.Printf("%s %d packets classified.\n", message, ctrl.Store().Len())
	if err := ctrl.Err(); err != nil {
		logging.ErrorUnwrapped(&logger, "capture failed", err)
	}

	name := ptr.FromPtr(cfg.Monitor.Export)
	if name == "" {
		return nil
	}

	exporter, closeGeo := createExporter(cfg)
	defer closeGeo()

	path, err := exporter.Activity(ctrl.Store().All(), name)
	if err != nil {
		logging.ErrorUnwrapped(&logger, "activity export failed", err)
		return nil
	}
	fmt.Printf("Activity exported to %s\n", path)

	return nil
}

func runDashboard(ctx context.Context, cfg *config.Config, iface *net.Interface) error {
	logger := logging.WithScope(log.Logger, "DASHBOARD")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exporter, closeGeo := createExporter(cfg)
	defer closeGeo()

	registry := device.NewRegistry()
	loop, closeLoop, err := createDiscovery(ctx, cfg, iface, registry, exporter)
	if err != nil {
		return err
	}
	defer closeLoop()

	ctrl, closeCtrl, err := createController(cfg, iface)
	if err != nil {
		return err
	}
	defer closeCtrl()

	go loop.Run(ctx)

	ctrl.Start(ctx)
	defer ctrl.Stop()

	f := feed.New(ctrl, registry, *cfg.View.Window, *cfg.View.LogLines)
	program := tea.NewProgram(
		dashboard.New(f, *cfg.View.Refresh),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	logger.Info().Int("records", ctrl.Store().Len()).Msg("dashboard closed")

	return nil
}

func createController(
	cfg *config.Config,
	iface *net.Interface,
) (*pipeline.Controller, func(), error) {
	handle, err := packet.NewHandle(iface, packet.HandleOptions{
		SnapLen:     *cfg.Capture.SnapLen,
		ReadTimeout: *cfg.Capture.ReadTimeout,
		Promiscuous: *cfg.Capture.Promiscuous,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open capture handle: %w", err)
	}

	source := packet.NewSource(handle)
	ctrl := pipeline.NewController(
		logging.WithScope(log.Logger, "CAPTURE"),
		source,
		pipeline.Options{
			Window:   *cfg.View.Window,
			QueueCap: *cfg.Capture.QueueCap,
		},
	)

	return ctrl, source.Close, nil
}

func createDiscovery(
	ctx context.Context,
	cfg *config.Config,
	iface *net.Interface,
	registry *device.Registry,
	sink discovery.Sink,
) (*discovery.Loop, func(), error) {
	logger := logging.WithScope(log.Logger, "DISCOVERY")

	addr, prefix, err := packet.InterfacePrefix(iface)
	if err != nil {
		return nil, nil, err
	}

	target := discovery.DefaultTarget(addr, prefix)
	if t := cfg.Discovery.Target; t != nil {
		target = *t
	}

	if gw, err := packet.GatewayAddr(); err == nil {
		logger.Info().Str("gateway", gw.String()).Msg("default gateway found")
	} else {
		logging.WarnUnwrapped(&logger, "gateway lookup failed", err)
	}

	vendors, err := device.NewVendorDB(
		logging.WithScope(log.Logger, "VENDOR"),
		ptr.FromPtr(cfg.Discovery.OUIDB),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := vendors.Watch(ctx); err != nil {
		logging.WarnUnwrapped(&logger, "vendor database will not be reloaded", err)
	}

	// ARP replies are filtered on this handle, so it is never shared with
	// the capture pipeline.
	handle, err := packet.NewHandle(iface, packet.HandleOptions{
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open discovery handle: %w", err)
	}

	scanner := discovery.NewARPScanner(
		logger,
		handle,
		iface.HardwareAddr,
		addr,
		vendors,
		*cfg.Discovery.ReplyWait,
	)

	loop := discovery.NewLoop(logger, scanner, registry, target, *cfg.Discovery.Interval, sink)

	return loop, handle.Close, nil
}

func createExporter(cfg *config.Config) (*export.Exporter, func()) {
	logger := logging.WithScope(log.Logger, "EXPORT")

	var reader *geo.Reader
	if path := ptr.FromPtr(cfg.Export.GeoIPDB); path != "" {
		r, err := geo.Open(path)
		if err != nil {
			logging.WarnUnwrapped(&logger, "exports will not carry locations", err)
		} else {
			reader = r
		}
	}

	return export.New(*cfg.Export.Dir, reader), func() { _ = reader.Close() }
}

func logRecord(logger zerolog.Logger, r activity.Record) {
	// the first summary line repeats the addresses
	lines := strings.Split(r.Summary, "\n")

	logger.Info().
		Str("tag", string(r.Tag)).
		Str("src", endpoint(r.Src, r.SrcPort, r.HasPorts)).
		Str("dst", endpoint(r.Dst, r.DstPort, r.HasPorts)).
		Msg(lines[len(lines)-1])
}

func endpoint(addr netip.Addr, port uint16, hasPort bool) string {
	if !hasPort {
		return addr.String()
	}
	return netip.AddrPortFrom(addr, port).String()
}
