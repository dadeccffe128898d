package feed

import (
	"net/netip"
	"time"

	"github.com/xvzc/lanwatch/internal/activity"
	"github.com/xvzc/lanwatch/internal/capture"
	"github.com/xvzc/lanwatch/internal/device"
)

// FilterAll selects every record of the window.
const FilterAll = "all"

// DefaultLogLines is the number of summaries carried by a snapshot.
const DefaultLogLines = 10

// Pipeline is the part of pipeline.Controller the feed depends on.
type Pipeline interface {
	DrainTick() int
	Store() *activity.Store
	State() capture.State
	Err() error
	Queued() int
	Dropped() uint64
}

// Point is one record plotted on the activity timeline.
type Point struct {
	Time  time.Time
	Index int
}

// DeviceActivity is a registry device and the number of window records
// touching it.
type DeviceActivity struct {
	Device device.Device
	Count  int
}

// Snapshot is everything a viewer renders for one refresh.
type Snapshot struct {
	// Filter is the effective filter, FilterAll or an address.
	Filter string

	Records []activity.Record
	Series  []Point
	// Log holds the latest summaries, most recent first.
	Log     []string
	Devices []DeviceActivity

	// Options are the selectable filters: FilterAll then every registry
	// address. Labels has the display text for each option.
	Options []string
	Labels  []string

	State   capture.State
	Err     string
	Queued  int
	Dropped uint64
	Total   int
}

type Feed struct {
	pipeline Pipeline
	registry *device.Registry
	window   int
	logLines int
}

// New creates a feed over the given pipeline and registry. Non-positive
// window or logLines select the defaults.
func New(pipeline Pipeline, registry *device.Registry, window, logLines int) *Feed {
	if window <= 0 {
		window = activity.DefaultWindow
	}
	if logLines <= 0 {
		logLines = DefaultLogLines
	}

	return &Feed{
		pipeline: pipeline,
		registry: registry,
		window:   window,
		logLines: logLines,
	}
}

// Tick drains the pipeline and builds a snapshot of the recent window
// restricted to filter. An empty or unparsable filter selects all records.
func (f *Feed) Tick(filter string) Snapshot {
	f.pipeline.DrainTick()

	store := f.pipeline.Store()
	addr, ok := parseFilter(filter)

	records := store.Recent(f.window)
	if ok {
		records = onlyTouching(records, addr)
	}

	snap := Snapshot{
		Filter:  FilterAll,
		Records: records,
		Series:  series(records),
		Log:     latestSummaries(records, f.logLines),
		State:   f.pipeline.State(),
		Queued:  f.pipeline.Queued(),
		Dropped: f.pipeline.Dropped(),
		Total:   store.Len(),
	}
	if ok {
		snap.Filter = addr.String()
	}
	if err := f.pipeline.Err(); err != nil {
		snap.Err = err.Error()
	}

	devices := f.registry.Devices()
	snap.Devices = make([]DeviceActivity, 0, len(devices))
	snap.Options = append(make([]string, 0, len(devices)+1), FilterAll)
	snap.Labels = append(make([]string, 0, len(devices)+1), "All devices")
	for _, d := range devices {
		snap.Devices = append(snap.Devices, DeviceActivity{
			Device: d,
			Count:  count(records, d.Addr),
		})
		snap.Options = append(snap.Options, d.Addr.String())
		snap.Labels = append(snap.Labels, d.Label())
	}

	return snap
}

func parseFilter(filter string) (netip.Addr, bool) {
	if filter == "" || filter == FilterAll {
		return netip.Addr{}, false
	}

	addr, err := netip.ParseAddr(filter)
	if err != nil {
		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}

func onlyTouching(records []activity.Record, addr netip.Addr) []activity.Record {
	out := records[:0]
	for _, r := range records {
		if r.Touches(addr) {
			out = append(out, r)
		}
	}
	return out
}

func series(records []activity.Record) []Point {
	points := make([]Point, len(records))
	for i, r := range records {
		points[i] = Point{Time: r.Time, Index: i}
	}
	return points
}

func latestSummaries(records []activity.Record, n int) []string {
	n = min(n, len(records))

	out := make([]string, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i].Summary)
	}
	return out
}

func count(records []activity.Record, addr netip.Addr) int {
	n := 0
	for _, r := range records {
		if r.Touches(addr) {
			n++
		}
	}
	return n
}
