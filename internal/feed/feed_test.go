package feed

import (
	"errors"
	"fmt"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvzc/lanwatch/internal/activity"
	"github.com/xvzc/lanwatch/internal/capture"
	"github.com/xvzc/lanwatch/internal/device"
)

// stubPipeline appends its pending records to the store on DrainTick.
type stubPipeline struct {
	store   *activity.Store
	pending []activity.Record
	drains  int
	err     error
}

func (p *stubPipeline) DrainTick() int {
	p.drains++
	for _, r := range p.pending {
		p.store.Append(r)
	}
	n := len(p.pending)
	p.pending = nil
	return n
}

func (p *stubPipeline) Store() *activity.Store { return p.store }
func (p *stubPipeline) State() capture.State   { return capture.StateRunning }
func (p *stubPipeline) Err() error             { return p.err }
func (p *stubPipeline) Queued() int            { return 0 }
func (p *stubPipeline) Dropped() uint64        { return 0 }

var (
	hostA  = netip.MustParseAddr("192.168.1.10")
	hostB  = netip.MustParseAddr("192.168.1.20")
	hostC  = netip.MustParseAddr("192.168.1.30")
	remote = netip.MustParseAddr("93.184.216.34")
)

func rec(i int, src, dst netip.Addr) activity.Record {
	return activity.Record{
		Time:    time.Unix(1700000000, 0).Add(time.Duration(i) * time.Second),
		Src:     src,
		Dst:     dst,
		Tag:     activity.TagUnclassified,
		Summary: fmt.Sprintf("record %d", i),
	}
}

func newFeed(t *testing.T, records []activity.Record) (*Feed, *stubPipeline) {
	t.Helper()

	p := &stubPipeline{store: activity.NewStore(activity.DefaultWindow), pending: records}
	registry := device.NewRegistry()
	registry.Replace([]device.Device{
		{Addr: hostA, Vendor: "Apple, Inc."},
		{Addr: hostB},
		{Addr: hostC},
	})

	return New(p, registry, 0, 0), p
}

func mixedTraffic() []activity.Record {
	pairs := [][2]netip.Addr{
		{hostA, remote},
		{remote, hostB},
		{hostA, hostB},
		{hostB, remote},
		{remote, hostA},
	}

	var out []activity.Record
	for i := range 30 {
		p := pairs[i%len(pairs)]
		out = append(out, rec(i, p[0], p[1]))
	}
	return out
}

func TestTickFilterProperty(t *testing.T) {
	f, _ := newFeed(t, mixedTraffic())

	all := f.Tick(FilterAll)
	require.Len(t, all.Records, 30)
	assert.Equal(t, FilterAll, all.Filter)

	tcs := []struct {
		name string
		addr netip.Addr
		want int
	}{
		{name: "host a", addr: hostA, want: 18},
		{name: "host b", addr: hostB, want: 18},
		{name: "idle host", addr: hostC, want: 0},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			snap := f.Tick(tc.addr.String())

			assert.Equal(t, tc.addr.String(), snap.Filter)
			assert.Len(t, snap.Records, tc.want)
			for _, r := range snap.Records {
				assert.True(t, r.Touches(tc.addr))
			}
			assert.Len(t, snap.Series, tc.want)
		})
	}
}

func TestTickAllIsUnfilteredWindow(t *testing.T) {
	var records []activity.Record
	for i := range 150 {
		records = append(records, rec(i, hostA, remote))
	}
	f, p := newFeed(t, records)

	tcs := []string{"", FilterAll, "not-an-address"}
	for _, filter := range tcs {
		t.Run(fmt.Sprintf("%q", filter), func(t *testing.T) {
			snap := f.Tick(filter)

			assert.Equal(t, FilterAll, snap.Filter)
			assert.Equal(t, p.store.Recent(activity.DefaultWindow), snap.Records)
			assert.Equal(t, 150, snap.Total)
		})
	}
}

func TestTickLogAndSeries(t *testing.T) {
	f, p := newFeed(t, mixedTraffic())

	snap := f.Tick(FilterAll)
	assert.Equal(t, 1, p.drains)

	require.Len(t, snap.Log, DefaultLogLines)
	assert.Equal(t, "record 29", snap.Log[0])
	assert.Equal(t, "record 20", snap.Log[9])

	require.Len(t, snap.Series, 30)
	assert.Equal(t, 0, snap.Series[0].Index)
	assert.Equal(t, snap.Records[29].Time, snap.Series[29].Time)
}

func TestTickDevicesAndOptions(t *testing.T) {
	f, p := newFeed(t, mixedTraffic())
	p.err = errors.New("capture source failed: link down")

	snap := f.Tick(FilterAll)

	assert.Equal(t, []string{FilterAll, "192.168.1.10", "192.168.1.20", "192.168.1.30"}, snap.Options)
	assert.Equal(t, []string{
		"All devices",
		"192.168.1.10 (Apple, Inc.)",
		"192.168.1.20 (Unknown)",
		"192.168.1.30 (Unknown)",
	}, snap.Labels)

	require.Len(t, snap.Devices, 3)
	assert.Equal(t, 18, snap.Devices[0].Count)
	assert.Equal(t, 18, snap.Devices[1].Count)
	assert.Equal(t, 0, snap.Devices[2].Count)

	assert.Equal(t, capture.StateRunning, snap.State)
	assert.Equal(t, "capture source failed: link down", snap.Err)
}

func TestTickEmpty(t *testing.T) {
	f, _ := newFeed(t, nil)

	snap := f.Tick(hostA.String())
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Log)
	assert.Empty(t, snap.Series)
	assert.Len(t, snap.Options, 4)
}
