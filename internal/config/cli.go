package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/xvzc/lanwatch/internal/ptr"
)

// Mode is the subcommand being run.
type Mode int

const (
	ModeScan Mode = iota
	ModeMonitor
	ModeDashboard
)

func (m Mode) String() string {
	switch m {
	case ModeMonitor:
		return "monitor"
	case ModeDashboard:
		return "dashboard"
	default:
		return "scan"
	}
}

// RunFunc runs a mode with the final configuration. configDir is the path
// of the loaded config file, or "" when none was loaded.
type RunFunc func(ctx context.Context, mode Mode, configDir string, cfg *Config) error

const welcome = `Welcome to lanwatch.

lanwatch discovers the devices on your local network and shows what
they are doing on the wire. Capturing packets usually requires root.

EXAMPLES:
  lanwatch scan                       sweep the network every 5 minutes
  lanwatch monitor -d 120 -e office   capture for 2 minutes and export
  lanwatch dashboard -i eth0          live dashboard on eth0`

func CreateCommand(
	runFunc RunFunc,
	version string,
	commit string,
	build string,
) *cli.Command {
	action := func(mode Mode) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			cfg, configDir, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return runFunc(ctx, mode, shortenHome(configDir), cfg)
		}
	}

	cmd := &cli.Command{
		Name:        "lanwatch",
		Usage:       "watch the devices and traffic of your local network",
		Description: welcome,
		Version:     fmt.Sprintf("%s %s (%s)", version, commit, build),
		Flags:       globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Usage:  "discover devices periodically and export each result",
				Action: action(ModeScan),
			},
			{
				Name:  "monitor",
				Usage: "capture traffic for a while and optionally export it",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:      "duration",
						Aliases:   []string{"d"},
						Usage:     "monitoring duration in seconds (default: 60)",
						Value:     60,
						OnlyOnce:  true,
						Validator: checkIntRange(1, 604800),
					},
					&cli.StringFlag{
						Name:     "export",
						Aliases:  []string{"e"},
						Usage:    "export the captured activity under this name",
						OnlyOnce: true,
					},
				},
				Action: action(ModeMonitor),
			},
			{
				Name:   "dashboard",
				Usage:  "live dashboard of device activity",
				Action: action(ModeDashboard),
			},
		},
	}

	cli.HelpFlag = &cli.BoolFlag{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   "show help",
	}

	return cmd
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     "clean",
			Usage:    "if set, all configuration files will be ignored",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage: `custom location of the config file to load. Options given through
	the command line flags will override the options set in this file.`,
			OnlyOnce: true,
			Sources:  cli.EnvVars("LANWATCH_CONFIG"),
		},
		&cli.StringFlag{
			Name:      "log-level",
			Usage:     "set log level (default: 'info')",
			OnlyOnce:  true,
			Validator: checkLogLevel,
		},
		&cli.StringFlag{
			Name:      "log-file",
			Usage:     "log file used while the dashboard is shown (default: lanwatch.log)",
			OnlyOnce:  true,
			Validator: checkNonEmpty,
		},
		&cli.StringFlag{
			Name:      "interface",
			Aliases:   []string{"i"},
			Usage:     "network interface (default: interface of the default route)",
			OnlyOnce:  true,
			Validator: checkInterfaceName,
		},
		&cli.IntFlag{
			Name:      "read-timeout",
			Usage:     "capture read timeout in milliseconds (default: 500, max: 1000)",
			OnlyOnce:  true,
			Validator: checkIntRange(1, 1000),
		},
		&cli.IntFlag{
			Name:      "snap-len",
			Usage:     "maximum bytes captured per packet (default: 3200)",
			OnlyOnce:  true,
			Validator: checkIntRange(64, 65535),
		},
		&cli.BoolFlag{
			Name:     "no-promisc",
			Usage:    "do not put the interface into promiscuous mode",
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:      "queue-cap",
			Usage:     "bound of the packet queue, oldest packets are dropped beyond it (default: 0, unbounded)",
			OnlyOnce:  true,
			Validator: checkIntRange(0, 10_000_000),
		},
		&cli.StringFlag{
			Name:      "target",
			Aliases:   []string{"t"},
			Usage:     "IPv4 range to scan (default: the /24 of the interface)",
			OnlyOnce:  true,
			Validator: checkTarget,
		},
		&cli.IntFlag{
			Name:      "interval",
			Usage:     "seconds between discovery cycles (default: 300)",
			OnlyOnce:  true,
			Validator: checkIntRange(1, 86400),
		},
		&cli.IntFlag{
			Name:      "reply-wait",
			Usage:     "milliseconds to wait for ARP replies (default: 2000)",
			OnlyOnce:  true,
			Validator: checkIntRange(100, 60000),
		},
		&cli.StringFlag{
			Name:     "oui-db",
			Usage:    "path of the OUI vendor database (JSON lines)",
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:      "window",
			Usage:     "number of recent packets shown (default: 100)",
			OnlyOnce:  true,
			Validator: checkIntRange(1, 100000),
		},
		&cli.IntFlag{
			Name:      "refresh",
			Usage:     "dashboard refresh interval in milliseconds (default: 1000)",
			OnlyOnce:  true,
			Validator: checkIntRange(100, 60000),
		},
		&cli.StringFlag{
			Name:      "export-dir",
			Usage:     "directory of exported files (default: exports)",
			OnlyOnce:  true,
			Validator: checkNonEmpty,
		},
		&cli.StringFlag{
			Name:     "geoip-db",
			Usage:    "MaxMind City database used to annotate exports",
			OnlyOnce: true,
		},
	}
}

func loadConfig(cmd *cli.Command) (*Config, string, error) {
	var tomlCfg *Config
	var configDir string
	if !cmd.Bool("clean") {
		configFilename := "lanwatch.toml"

		configDirs := []string{
			path.Join(string(os.PathSeparator), "etc", configFilename),
			path.Join(os.Getenv("XDG_CONFIG_HOME"), "lanwatch", configFilename),
			path.Join(os.Getenv("HOME"), ".config", "lanwatch", configFilename),
		}

		c, err := searchTomlFile(cmd.String("config"), configDirs)
		if err != nil {
			return nil, "", err
		}

		if c != "" {
			configDir = c
			tomlCfg, err = fromTomlFile(c)
			if err != nil {
				return nil, "", fmt.Errorf("error parsing toml config: %w", err)
			}
		}
	}

	argsCfg := parseConfigFromArgs(cmd)

	return NewConfig().Merge(tomlCfg).Merge(argsCfg), configDir, nil
}

// parseConfigFromArgs collects only the flags given on the command line, so
// that they override the config file without resetting it to defaults.
func parseConfigFromArgs(cmd *cli.Command) *Config {
	ms := func(name string) *time.Duration {
		return ptr.FromValue(time.Duration(cmd.Int(name)) * time.Millisecond)
	}

	cfg := &Config{
		General:   &GeneralOptions{},
		Capture:   &CaptureOptions{},
		Discovery: &DiscoveryOptions{},
		View:      &ViewOptions{},
		Export:    &ExportOptions{},
		Monitor:   &MonitorOptions{},
	}

	if cmd.IsSet("log-level") {
		cfg.General.LogLevel = ptr.FromValue(MustParseLogLevel(cmd.String("log-level")))
	}
	if cmd.IsSet("log-file") {
		cfg.General.LogFile = ptr.FromValue(cmd.String("log-file"))
	}

	if cmd.IsSet("interface") {
		cfg.Capture.Interface = ptr.FromValue(cmd.String("interface"))
	}
	if cmd.IsSet("read-timeout") {
		cfg.Capture.ReadTimeout = ms("read-timeout")
	}
	if cmd.IsSet("snap-len") {
		cfg.Capture.SnapLen = ptr.FromValue(int(cmd.Int("snap-len")))
	}
	if cmd.IsSet("no-promisc") {
		cfg.Capture.Promiscuous = ptr.FromValue(!cmd.Bool("no-promisc"))
	}
	if cmd.IsSet("queue-cap") {
		cfg.Capture.QueueCap = ptr.FromValue(int(cmd.Int("queue-cap")))
	}

	if cmd.IsSet("target") {
		cfg.Discovery.Target = ptr.FromValue(MustParsePrefix(cmd.String("target")))
	}
	if cmd.IsSet("interval") {
		cfg.Discovery.Interval = ptr.FromValue(time.Duration(cmd.Int("interval")) * time.Second)
	}
	if cmd.IsSet("reply-wait") {
		cfg.Discovery.ReplyWait = ms("reply-wait")
	}
	if cmd.IsSet("oui-db") {
		cfg.Discovery.OUIDB = ptr.FromValue(cmd.String("oui-db"))
	}

	if cmd.IsSet("window") {
		cfg.View.Window = ptr.FromValue(int(cmd.Int("window")))
	}
	if cmd.IsSet("refresh") {
		cfg.View.Refresh = ms("refresh")
	}

	if cmd.IsSet("export-dir") {
		cfg.Export.Dir = ptr.FromValue(cmd.String("export-dir"))
	}
	if cmd.IsSet("geoip-db") {
		cfg.Export.GeoIPDB = ptr.FromValue(cmd.String("geoip-db"))
	}

	if cmd.IsSet("duration") {
		cfg.Monitor.Duration = ptr.FromValue(time.Duration(cmd.Int("duration")) * time.Second)
	}
	if cmd.IsSet("export") {
		cfg.Monitor.Export = ptr.FromValue(cmd.String("export"))
	}

	return cfg
}

func shortenHome(p string) string {
	home := os.Getenv("HOME")
	if home == "" || !strings.HasPrefix(p, home) {
		return p
	}
	return "~" + strings.TrimPrefix(p, home)
}
