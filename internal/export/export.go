package export

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xvzc/lanwatch/internal/activity"
	"github.com/xvzc/lanwatch/internal/device"
	"github.com/xvzc/lanwatch/internal/geo"
)

const (
	DefaultDir     = "exports"
	ActivityPrefix = "activity"
	DevicesPrefix  = "devices"
	NoDevicesName  = "no_devices_detected"

	timestampLayout = "20060102_150405"
)

type activityEntry struct {
	activity.Record
	SrcGeo *geo.Location `json:"src_geo,omitempty"`
	DstGeo *geo.Location `json:"dst_geo,omitempty"`
}

type activityFile struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Count       int             `json:"count"`
	Records     []activityEntry `json:"records"`
}

type devicesFile struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Count       int             `json:"count"`
	Devices     []device.Device `json:"devices"`
}

// Exporter writes timestamped JSON snapshots into a directory.
type Exporter struct {
	dir string
	geo *geo.Reader
	now func() time.Time
}

// New creates an exporter writing into dir. geoReader may be nil.
func New(dir string, geoReader *geo.Reader) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}

	return &Exporter{
		dir: dir,
		geo: geoReader,
		now: time.Now,
	}
}

// Activity writes records to <dir>/<name>_<timestamp>.json and returns the
// path. An empty name selects ActivityPrefix.
func (e *Exporter) Activity(records []activity.Record, name string) (string, error) {
	now := e.now()

	entries := make([]activityEntry, len(records))
	for i, r := range records {
		entries[i] = activityEntry{
			Record: r,
			SrcGeo: e.locate(r.Src),
			DstGeo: e.locate(r.Dst),
		}
	}

	return e.write(prefix(name, ActivityPrefix), now, activityFile{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Count:       len(entries),
		Records:     entries,
	})
}

// Devices writes the device list of a discovery cycle and returns the path.
// An empty list is written under NoDevicesName.
func (e *Exporter) Devices(devices []device.Device) (string, error) {
	now := e.now()

	name := DevicesPrefix
	if len(devices) == 0 {
		name = NoDevicesName
		devices = []device.Device{}
	}

	return e.write(name, now, devicesFile{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Count:       len(devices),
		Devices:     devices,
	})
}

func (e *Exporter) locate(addr netip.Addr) *geo.Location {
	loc, ok := e.geo.Lookup(addr)
	if !ok {
		return nil
	}
	return &loc
}

func (e *Exporter) write(name string, now time.Time, v any) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("%s_%s.json", name, now.Format(timestampLayout)))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	return path, nil
}

// prefix reduces a user supplied name to a safe file name prefix.
func prefix(name, fallback string) string {
	name = strings.TrimSuffix(filepath.Base(strings.TrimSpace(name)), ".json")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallback
	}
	return name
}
