package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/scc1/internal/slf"
)

type fakeSource struct {
	buffers []*slf.ExtendedBuffer
	err     error
	reads   int
	stops   int
	stopErr error
}

func (f *fakeSource) ReadExtendedBuffer() (*slf.ExtendedBuffer, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.buffers) == 0 {
		return &slf.ExtendedBuffer{NumSignals: 3}, nil
	}
	b := f.buffers[0]
	f.buffers = f.buffers[1:]
	return b, nil
}

func (f *fakeSource) StopContinuousMeasurement() error {
	f.stops++
	return f.stopErr
}

func buffer(lost uint32, flows ...int16) *slf.ExtendedBuffer {
	b := &slf.ExtendedBuffer{BytesLost: lost, NumSignals: 3}
	for _, f := range flows {
		b.Records = append(b.Records, []int16{f, 4600, 0})
	}
	return b
}

func update(t *testing.T, m MonitorModel, msg tea.Msg) (MonitorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(MonitorModel), cmd
}

func TestMonitor_Poll(t *testing.T) {
	src := &fakeSource{buffers: []*slf.ExtendedBuffer{
		buffer(0, 500, 1000),
		buffer(12, 1500),
	}}
	m := NewMonitorModel(src, MonitorConfig{Title: "Flow", Scale: 500, Unit: "ml/min", History: 2})

	m, cmd := update(t, m, pollTickMsg(time.Now()))
	if cmd == nil {
		t.Error("poll should schedule the next tick")
	}
	m, _ = update(t, m, pollTickMsg(time.Now()))

	if src.reads != 2 {
		t.Errorf("reads = %d, want 2", src.reads)
	}
	stats := m.Stats()
	if stats.Count != 3 || stats.Min != 1 || stats.Max != 3 || stats.Mean() != 2 {
		t.Errorf("stats = %+v mean %v", stats, stats.Mean())
	}
	latest, ok := m.Latest()
	if !ok || latest.Flow != 1500 {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}
	if len(m.history) != 2 {
		t.Errorf("history = %d, want 2", len(m.history))
	}

	view := m.View()
	for _, want := range []string{"FLOW", "3.000 ml/min", "23.00 °C", "12 bytes lost"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestMonitor_PollError(t *testing.T) {
	src := &fakeSource{err: errors.New("timeout")}
	m := NewMonitorModel(src, MonitorConfig{})

	m, cmd := update(t, m, pollTickMsg(time.Now()))
	if cmd == nil {
		t.Error("polling should continue after an error")
	}
	if m.Err() == nil || !strings.Contains(m.View(), "timeout") {
		t.Error("poll error should be kept and shown")
	}
}

func TestMonitor_Pause(t *testing.T) {
	src := &fakeSource{buffers: []*slf.ExtendedBuffer{buffer(0, 10)}}
	m := NewMonitorModel(src, MonitorConfig{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m, _ = update(t, m, pollTickMsg(time.Now()))

	if src.reads != 1 {
		t.Errorf("paused monitor should still drain the buffer, reads = %d", src.reads)
	}
	if m.Stats().Count != 0 {
		t.Error("paused monitor should not record samples")
	}
}

func TestMonitor_QuitStopsMeasurement(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{stopErr: errors.New("link lost")}
			m := NewMonitorModel(src, MonitorConfig{})

			m, cmd := update(t, m, tt.msg)
			if src.stops != 1 {
				t.Errorf("stops = %d, want 1", src.stops)
			}
			if cmd == nil {
				t.Fatal("quit should return a command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("quit key should quit the program")
			}
			if m.StopErr() == nil {
				t.Error("stop error should be kept")
			}

			// a tick arriving after quit must not touch the device
			m, _ = update(t, m, pollTickMsg(time.Now()))
			if src.reads != 0 {
				t.Error("no reads after quit")
			}
		})
	}
}

func TestFlowStats(t *testing.T) {
	var s FlowStats
	if s.Mean() != 0 {
		t.Error("empty mean should be 0")
	}
	for _, v := range []float64{-2, 4, 1} {
		s.Add(v)
	}
	if s.Min != -2 || s.Max != 4 || s.Mean() != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestMonitor_HistoryFitsScreen(t *testing.T) {
	tests := []struct {
		name   string
		height int
		want   int
	}{
		{"tall", 100, 10},
		{"short", monitorChromeRows + 4, 4},
		{"tiny", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{buffers: []*slf.ExtendedBuffer{
				buffer(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12),
			}}
			m := NewMonitorModel(src, MonitorConfig{History: 10})
			m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: tt.height})
			m, _ = update(t, m, pollTickMsg(time.Now()))

			if got := m.historyRows(); got != tt.want {
				t.Errorf("historyRows() = %d, want %d", got, tt.want)
			}
			if got := strings.Count(m.View(), "0x0000"); got != tt.want {
				t.Errorf("history lines = %d, want %d", got, tt.want)
			}
		})
	}
}
