package alert

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"wildfire-sim/internal/config"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// alertMsg carries an alert line for the log viewport and the alert itself.
type alertMsg struct {
	line  string
	alert sensor.Alert
}

// stateMsg carries a simulation state update.
type stateMsg struct{ telemetry.StateRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

const (
	maxLogLines = 1000
	maxNodeRows = 8
)

// TUIWriter renders alerts and state rows in a bubbletea console.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
// Quitting the console interrupts the process.
func NewTUIWriter(cfg *config.Config) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteAlert implements AlertWriter.
func (w *TUIWriter) WriteAlert(a sensor.Alert) error {
	w.program.Send(alertMsg{line: alertLine(a), alert: a})
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.StateRow) error {
	w.program.Send(stateMsg{StateRow: row})
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

// nodeStat aggregates the alerts seen from one node.
type nodeStat struct {
	last  sensor.Alert
	count int
}

type tuiModel struct {
	cfg          *config.Config
	table        table.Model
	vp           viewport.Model
	logs         []string
	nodes        map[string]*nodeStat
	state        telemetry.StateRow
	admin        bool
	wrap         bool
	autoscroll   bool
	help         bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(cfg *config.Config) tuiModel {
	cols := []table.Column{
		{Title: "Node", Width: 10},
		{Title: "Kind", Width: 7},
		{Title: "Pos", Width: 9},
		{Title: "Temp °C", Width: 8},
		{Title: "CO2 ppm", Width: 8},
		{Title: "Alerts", Width: 6},
		{Title: "Last t", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(2))
	m := tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		nodes:      make(map[string]*nodeStat),
		autoscroll: true,
	}
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case alertMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		id := msg.alert.SenderID.String()
		st, ok := m.nodes[id]
		if !ok {
			st = &nodeStat{}
			m.nodes[id] = st
		}
		st.last = msg.alert
		st.count++
		m.refreshTable()
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case stateMsg:
		m.state = msg.StateRow
	case adminMsg:
		m.admin = msg.active
	}
	return m, nil
}

func (m *tuiModel) refreshTable() {
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	// most recent reporters first
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.nodes[ids[i]].last, m.nodes[ids[j]].last
		if a.SimTime != b.SimTime {
			return a.SimTime > b.SimTime
		}
		return ids[i] < ids[j]
	})
	if len(ids) > maxNodeRows {
		ids = ids[:maxNodeRows]
	}
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		st := m.nodes[id]
		rows = append(rows, table.Row{
			id[:8],
			string(st.last.Kind),
			fmt.Sprintf("%d,%d", st.last.Row, st.last.Col),
			fmt.Sprintf("%.1f", st.last.Temperature),
			fmt.Sprintf("%.0f", st.last.CO2Level),
			fmt.Sprintf("%d", st.count),
			fmt.Sprintf("%.1f", st.last.SimTime),
		})
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 1)
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	h := m.height - m.headerHeight - bottomHeight - 2
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	lines := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	return strings.Join([]string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("Wildfire sensor alerts")
	if m.cfg != nil {
		title += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
			fmt.Sprintf("  grid %dx%d · thresholds %.0f°C / %.0f ppm",
				m.cfg.Grid.Width, m.cfg.Grid.Height,
				m.cfg.Sensors.TemperatureThreshold, m.cfg.Sensors.CO2Threshold))
	}
	if len(m.nodes) == 0 {
		return title + "\nno alerts yet"
	}
	return title + "\n" + m.table.View()
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	state := "waiting for first tick"
	if !m.state.Timestamp.IsZero() {
		state = stateLine(m.state)
	}
	return fmt.Sprintf("%s | Admin UI %s | Wrap %s | Scroll %s | ? help",
		state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap for alert lines",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
