package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvzc/lanwatch/internal/capture"
	"github.com/xvzc/lanwatch/internal/feed"
)

const defaultRefresh = time.Second

// Ticker produces one feed snapshot per refresh.
type Ticker interface {
	Tick(filter string) feed.Snapshot
}

type tickMsg time.Time

// Model is the bubbletea model of the live dashboard.
type Model struct {
	feed    Ticker
	refresh time.Duration
	styles  styles

	filter string
	snap   feed.Snapshot
	width  int
}

func New(ticker Ticker, refresh time.Duration) *Model {
	if refresh <= 0 {
		refresh = defaultRefresh
	}

	return &Model{
		feed:    ticker,
		refresh: refresh,
		styles:  newStyles(),
		filter:  feed.FilterAll,
		width:   80,
	}
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg(time.Now()) }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.poll()
		return m, tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "right", "n":
		m.cycle(1)
	case "shift+tab", "left", "p":
		m.cycle(-1)
	case "a":
		m.filter = feed.FilterAll
	default:
		return m, nil
	}

	m.poll()

	return m, nil
}

// Filter returns the selected filter option.
func (m *Model) Filter() string {
	return m.filter
}

func (m *Model) poll() {
	m.snap = m.feed.Tick(m.filter)
	// the selected device may have left the registry
	if m.snap.Filter != m.filter {
		m.filter = m.snap.Filter
	}
	if !slices.Contains(m.snap.Options, m.filter) {
		m.filter = feed.FilterAll
	}
}

func (m *Model) cycle(step int) {
	opts := m.snap.Options
	if len(opts) == 0 {
		m.filter = feed.FilterAll
		return
	}

	i := slices.Index(opts, m.filter)
	if i < 0 {
		i = 0
	}
	m.filter = opts[(i+step+len(opts))%len(opts)]
}

func (m *Model) View() string {
	s := m.styles
	inner := max(m.width-4, 20)

	var b strings.Builder

	b.WriteString(s.title.Render("lanwatch") + "  " + m.renderStatus() + "\n\n")

	b.WriteString(s.section.Render("Filter") + "\n")
	b.WriteString(m.renderOptions(inner) + "\n\n")

	b.WriteString(s.section.Render(fmt.Sprintf("Activity (%d in window)", len(m.snap.Records))) + "\n")
	b.WriteString(s.ok.Render(sparkline(m.snap.Series, inner)) + "\n\n")

	b.WriteString(s.section.Render("Devices") + "\n")
	b.WriteString(m.renderDevices() + "\n\n")

	b.WriteString(s.section.Render("Recent packets") + "\n")
	b.WriteString(m.renderLog(inner) + "\n\n")

	b.WriteString(s.help.Render("tab/shift+tab: filter • a: all devices • q: quit"))

	return s.app.Render(b.String())
}

func (m *Model) renderStatus() string {
	s := m.styles

	state := s.ok
	switch m.snap.State {
	case capture.StateStopping:
		state = s.warn
	case capture.StateIdle:
		state = s.err
	}

	parts := []string{
		state.Render(m.snap.State.String()),
		fmt.Sprintf("total %d", m.snap.Total),
		fmt.Sprintf("queued %d", m.snap.Queued),
	}
	if m.snap.Dropped > 0 {
		parts = append(parts, s.warn.Render(fmt.Sprintf("dropped %d", m.snap.Dropped)))
	}
	if m.snap.Err != "" {
		parts = append(parts, s.err.Render(m.snap.Err))
	}

	return strings.Join(parts, " | ")
}

func (m *Model) renderOptions(width int) string {
	s := m.styles

	rendered := make([]string, 0, len(m.snap.Options))
	for i, opt := range m.snap.Options {
		label := opt
		if i < len(m.snap.Labels) {
			label = m.snap.Labels[i]
		}

		if opt == m.filter {
			rendered = append(rendered, s.selected.Render("["+label+"]"))
		} else {
			rendered = append(rendered, s.option.Render(" "+label+" "))
		}
	}

	if len(rendered) == 0 {
		return s.selected.Render("[All devices]")
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(rendered, " "))
}

func (m *Model) renderDevices() string {
	if len(m.snap.Devices) == 0 {
		return m.styles.help.Render("no devices discovered yet")
	}

	lines := make([]string, 0, len(m.snap.Devices))
	for _, d := range m.snap.Devices {
		lines = append(lines, fmt.Sprintf(
			"%-39s %-17s %-24s %5d",
			d.Device.Addr,
			d.Device.MAC,
			truncate(d.Device.VendorLabel(), 24),
			d.Count,
		))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderLog(width int) string {
	if len(m.snap.Log) == 0 {
		return m.styles.help.Render("waiting for packets...")
	}

	lines := make([]string, 0, len(m.snap.Log))
	for _, entry := range m.snap.Log {
		line := strings.ReplaceAll(entry, "\n", " | ")
		style := m.styles.log
		if strings.Contains(entry, "Encrypted traffic") {
			style = m.styles.encrypted
		}
		lines = append(lines, style.Render(truncate(line, width)))
	}

	return strings.Join(lines, "\n")
}

var bars = []rune("▁▂▃▄▅▆▇█")

// sparkline buckets the points by time into width columns.
func sparkline(points []feed.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	first, last := points[0].Time, points[len(points)-1].Time
	span := last.Sub(first)

	buckets := make([]int, width)
	for _, p := range points {
		i := 0
		if span > 0 {
			i = int(int64(p.Time.Sub(first)) * int64(width-1) / int64(span))
		}
		buckets[min(max(i, 0), width-1)]++
	}

	peak := slices.Max(buckets)
	var b strings.Builder
	for _, n := range buckets {
		if n == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(bars[(n*(len(bars)-1)+peak-1)/peak])
	}

	return strings.TrimRight(b.String(), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
