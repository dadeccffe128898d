package main

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvzc/lanwatch/internal/config"
	"github.com/xvzc/lanwatch/internal/ptr"
)

func TestLogOutput(t *testing.T) {
	cfg := config.NewConfig()
	cfg.General.LogFile = ptr.FromValue(filepath.Join(t.TempDir(), "lanwatch.log"))

	out, closeOut, err := logOutput(config.ModeMonitor, cfg)
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, out)
	closeOut()

	out, closeOut, err = logOutput(config.ModeDashboard, cfg)
	require.NoError(t, err)
	_, err = out.Write([]byte("hello\n"))
	require.NoError(t, err)
	closeOut()

	b, err := os.ReadFile(*cfg.General.LogFile)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(b))
}

func TestCreateExporterWithoutGeoIP(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Export.Dir = ptr.FromValue(t.TempDir())
	cfg.Export.GeoIPDB = ptr.FromValue(filepath.Join(t.TempDir(), "missing.mmdb"))

	exporter, closeGeo := createExporter(cfg)
	defer closeGeo()

	path, err := exporter.Devices(nil)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestEndpoint(t *testing.T) {
	addr := netip.MustParseAddr("10.0.0.1")
	v6 := netip.MustParseAddr("fe80::1")

	assert.Equal(t, "10.0.0.1", endpoint(addr, 80, false))
	assert.Equal(t, "10.0.0.1:80", endpoint(addr, 80, true))
	assert.Equal(t, "[fe80::1]:53", endpoint(v6, 53, true))
}
