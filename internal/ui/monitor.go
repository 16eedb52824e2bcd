package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/scc1/internal/slf"
)

// DefaultPollInterval is how often the monitor drains the sample buffer
const DefaultPollInterval = 200 * time.Millisecond

// DefaultHistory is the number of samples listed below the live reading
const DefaultHistory = 10

// monitorChromeRows is the screen height used by everything but the history
const monitorChromeRows = 18

// MonitorSource is the part of the flow driver the monitor uses.
// Every call happens on the Update goroutine.
type MonitorSource interface {
	ReadExtendedBuffer() (*slf.ExtendedBuffer, error)
	StopContinuousMeasurement() error
}

// MonitorConfig describes what the monitor shows
type MonitorConfig struct {
	Title        string
	Params       []Param
	Scale        uint16        // from FlowUnitAndScale, 0 shows raw ticks
	Unit         string        // label from slf.FlowUnitLabel
	FullScale    float64       // flow shown as a full bar, 0 hides the bar
	PollInterval time.Duration // default DefaultPollInterval
	History      int           // default DefaultHistory
}

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	Pause key.Binding
	Reset key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Pause, k.Reset, k.Quit}}
}

type pollTickMsg time.Time

// FlowStats accumulates scaled flow readings
type FlowStats struct {
	Count int
	Min   float64
	Max   float64
	sum   float64
}

// Add records one reading
func (s *FlowStats) Add(v float64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.sum += v
}

// Mean returns the average reading, 0 without samples
func (s *FlowStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.sum / float64(s.Count)
}

// MonitorModel is a Bubble Tea model showing a running continuous measurement.
// Quitting stops the measurement on the device.
type MonitorModel struct {
	source MonitorSource
	config MonitorConfig

	spinner spinner.Model
	bar     progress.Model
	help    help.Model
	keys    monitorKeyMap

	history   []slf.Measurement
	stats     FlowStats
	bytesLost uint32
	reads     int
	paused    bool
	err       error
	stopErr   error
	quitting  bool
	width     int
	height    int
}

// NewMonitorModel creates a monitor for a measurement that is already running
func NewMonitorModel(source MonitorSource, config MonitorConfig) MonitorModel {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.History <= 0 {
		config.History = DefaultHistory
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	width, height := GetTerminalSize()

	return MonitorModel{
		source:  source,
		config:  config,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:    help.New(),
		keys: monitorKeyMap{
			Pause: key.NewBinding(
				key.WithKeys("p", " "),
				key.WithHelp("p", "pause"),
			),
			Reset: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "reset stats"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c", "esc"),
				key.WithHelp("q", "stop & quit"),
			),
		},
		width:  width,
		height: height,
	}
}

func (m MonitorModel) pollTick() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.pollTick())
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width, nil)
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.stopErr = m.source.StopContinuousMeasurement()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Reset):
			m.stats = FlowStats{}
			m.bytesLost = 0
		}
		return m, nil

	case pollTickMsg:
		if m.quitting {
			return m, nil
		}
		m.poll()
		return m, m.pollTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// poll drains the device buffer. Samples are discarded while paused so the
// device queue never overflows.
func (m *MonitorModel) poll() {
	buf, err := m.source.ReadExtendedBuffer()
	m.err = err
	if err != nil {
		return
	}
	m.reads++
	m.bytesLost += buf.BytesLost
	if m.paused {
		return
	}

	for _, s := range buf.Measurements() {
		m.stats.Add(s.ScaledFlow(m.config.Scale))
		m.history = append(m.history, s)
	}
	if extra := len(m.history) - m.config.History; extra > 0 {
		m.history = append(m.history[:0], m.history[extra:]...)
	}
}

// Stats returns the accumulated flow statistics
func (m MonitorModel) Stats() FlowStats { return m.stats }

// Err returns the last poll error, nil after a successful poll
func (m MonitorModel) Err() error { return m.err }

// StopErr returns the error from stopping the measurement on quit
func (m MonitorModel) StopErr() error { return m.stopErr }

// Latest returns the newest sample, false before the first one
func (m MonitorModel) Latest() (slf.Measurement, bool) {
	if len(m.history) == 0 {
		return slf.Measurement{}, false
	}
	return m.history[len(m.history)-1], true
}

// historyRows is the number of history lines that fit on screen
func (m MonitorModel) historyRows() int {
	rows := m.config.History
	if m.height > 0 && m.height-monitorChromeRows < rows {
		rows = m.height - monitorChromeRows
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m MonitorModel) formatFlow(v float64) string {
	if m.config.Unit == "" {
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.3f %s", v, m.config.Unit)
}

// View implements tea.Model
func (m MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(NewHeader(m.config.Title, "scc1ctl monitor", m.config.Params...).SetWidth(m.width).Render())
	b.WriteString("\n\n")

	status := m.spinner.View() + " measuring"
	if m.paused {
		status = StyleMuted("‖ paused")
	}
	b.WriteString("  " + status + "\n\n")

	latest, ok := m.Latest()
	if !ok {
		b.WriteString(StyleMuted("  waiting for samples...") + "\n")
	} else {
		flow := latest.ScaledFlow(m.config.Scale)
		b.WriteString("  " + FlowValueStyle.Render(m.formatFlow(flow)))
		b.WriteString(fmt.Sprintf("   %.2f °C\n", latest.TemperatureC()))
		if m.config.FullScale > 0 {
			ratio := math.Min(math.Abs(flow)/m.config.FullScale, 1)
			b.WriteString("\n  " + m.bar.ViewAs(ratio) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(ResultKeyStyle.Render("  Samples:") + fmt.Sprintf(" %d", m.stats.Count) + "\n")
	if m.stats.Count > 0 {
		b.WriteString(ResultKeyStyle.Render("  Min / Mean / Max:") + " " +
			fmt.Sprintf("%s / %s / %s", m.formatFlow(m.stats.Min), m.formatFlow(m.stats.Mean()), m.formatFlow(m.stats.Max)) + "\n")
	}
	if m.bytesLost > 0 {
		b.WriteString(WarningTitleStyle.Render(fmt.Sprintf("  %s buffer overflow, %d bytes lost", WarningMarker, m.bytesLost)) + "\n")
	}
	if m.err != nil {
		b.WriteString(ErrorMessageStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\n" + TableHeaderStyle.Render(fmt.Sprintf("  %12s  %10s  %6s", "flow", "temp °C", "flags")) + "\n")
		oldest := len(m.history) - m.historyRows()
		for i := len(m.history) - 1; i >= 0 && i >= oldest; i-- {
			s := m.history[i]
			b.WriteString(fmt.Sprintf("  %12.3f  %10.2f  0x%04X\n", s.ScaledFlow(m.config.Scale), s.TemperatureC(), s.Flags))
		}
	}

	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

// StyleMuted renders text in the muted color
func StyleMuted(s string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(s)
}

// RunMonitor runs the monitor until the user quits. The measurement is stopped
// on quit and any stop error is returned.
func RunMonitor(source MonitorSource, config MonitorConfig) (FlowStats, error) {
	p := tea.NewProgram(NewMonitorModel(source, config), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return FlowStats{}, fmt.Errorf("monitor failed: %w", err)
	}
	m := final.(MonitorModel)
	if !m.quitting {
		// program killed without the quit key
		if stopErr := source.StopContinuousMeasurement(); stopErr != nil {
			return m.stats, stopErr
		}
	}
	return m.stats, m.stopErr
}
