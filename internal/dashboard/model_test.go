package dashboard

import (
	"net/netip"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvzc/lanwatch/internal/capture"
	"github.com/xvzc/lanwatch/internal/device"
	"github.com/xvzc/lanwatch/internal/feed"
)

type stubTicker struct {
	filters []string
	options []string
}

func (s *stubTicker) Tick(filter string) feed.Snapshot {
	s.filters = append(s.filters, filter)

	labels := make([]string, len(s.options))
	copy(labels, s.options)

	return feed.Snapshot{
		Filter:  filter,
		Options: s.options,
		Labels:  labels,
		State:   capture.StateRunning,
		Log:     []string{"Packet detected: 10.0.0.1 -> 10.0.0.2, Protocol: 6 (TCP)\nHTTP request: GET /"},
		Devices: []feed.DeviceActivity{
			{Device: device.Device{Addr: netip.MustParseAddr("10.0.0.1")}, Count: 3},
		},
	}
}

func TestModelTickPollsFeed(t *testing.T) {
	ticker := &stubTicker{options: []string{feed.FilterAll}}
	m := New(ticker, 10*time.Millisecond)

	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{feed.FilterAll}, ticker.filters)

	view := m.View()
	assert.Contains(t, view, "running")
	assert.Contains(t, view, "Packet detected: 10.0.0.1 -> 10.0.0.2")
	assert.Contains(t, view, "10.0.0.1")
}

func TestModelFilterCycling(t *testing.T) {
	ticker := &stubTicker{options: []string{feed.FilterAll, "10.0.0.1", "10.0.0.2"}}
	m := New(ticker, time.Second)
	m.Update(tickMsg(time.Now()))

	tcs := []struct {
		key  tea.KeyMsg
		want string
	}{
		{key: tea.KeyMsg{Type: tea.KeyTab}, want: "10.0.0.1"},
		{key: tea.KeyMsg{Type: tea.KeyTab}, want: "10.0.0.2"},
		{key: tea.KeyMsg{Type: tea.KeyTab}, want: feed.FilterAll},
		{key: tea.KeyMsg{Type: tea.KeyShiftTab}, want: "10.0.0.2"},
		{key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, want: feed.FilterAll},
	}

	for _, tc := range tcs {
		m.Update(tc.key)
		assert.Equal(t, tc.want, m.Filter(), tc.key.String())
		assert.Equal(t, tc.want, ticker.filters[len(ticker.filters)-1])
	}
}

func TestModelFilterFallsBackWhenDeviceLeaves(t *testing.T) {
	ticker := &stubTicker{options: []string{feed.FilterAll, "10.0.0.1"}}
	m := New(ticker, time.Second)
	m.Update(tickMsg(time.Now()))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "10.0.0.1", m.Filter())

	ticker.options = []string{feed.FilterAll}
	m.Update(tickMsg(time.Now()))
	assert.Equal(t, feed.FilterAll, m.Filter())
}

func TestModelQuit(t *testing.T) {
	m := New(&stubTicker{}, time.Second)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestSparkline(t *testing.T) {
	base := time.Unix(1700000000, 0)

	tcs := []struct {
		name   string
		points []feed.Point
		width  int
		want   string
	}{
		{name: "empty", points: nil, width: 10, want: ""},
		{name: "single point", points: []feed.Point{{Time: base}}, width: 4, want: "█"},
		{
			name: "peak and gap",
			points: []feed.Point{
				{Time: base},
				{Time: base},
				{Time: base.Add(3 * time.Second)},
			},
			width: 4,
			want:  "█  ▅",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sparkline(tc.points, tc.width))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
}
