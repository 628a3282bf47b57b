// SPDX-License-Identifier: EPL-2.0

package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Model is the TUI state.
type Model struct {
	ctrl *Controls

	// Track
	track   string
	format  string
	state   string
	elapsed time.Duration

	// Output
	volume int
	muted  bool

	// Tap
	session   string
	tapState  string
	rms       []float64
	peak      []float64
	delivered uint64
	dropped   uint64
	errors    uint64
	lastErr   string

	// Recording
	recording string
	recFrames int64
	recDrops  uint64

	showDebug bool

	width  int
	height int
}

// StatusMsg updates the TUI. Zero fields leave the model unchanged.
type StatusMsg struct {
	Format    string
	State     string
	Elapsed   time.Duration
	Volume    int
	Session   string
	TapState  string
	RMS       []float64
	Peak      []float64
	Delivered uint64
	Dropped   uint64
	Errors    uint64
	Err       error
	Recording string
	RecFrames int64
	RecDrops  uint64
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString(m.renderMeters())
	s.WriteString(m.renderControls())
	s.WriteString(m.renderStats())
	if m.showDebug {
		s.WriteString(m.renderDebug())
	}
	s.WriteString(m.renderHelp())

	return s.String()
}

func (m Model) renderHeader() string {
	format := m.format
	if format == "" {
		format = "-"
	}

	return fmt.Sprintf(`┌─ audtap ─────────────────────────────────────────────┐
│ Track:  %-44s │
│ Format: %-44s │
│ State:  %-10s %33s │
├──────────────────────────────────────────────────────┤
`, truncate(m.track, 44), truncate(format, 44), m.state, formatElapsed(m.elapsed))
}

func (m Model) renderMeters() string {
	if len(m.rms) == 0 {
		return "│ No audio tapped yet                                  │\n"
	}

	var s strings.Builder
	for ch := range m.rms {
		s.WriteString(fmt.Sprintf("│ %-5s [%s] %7s %7s │\n",
			channelLabel(ch, len(m.rms)),
			renderBar(levelPercent(m.rms[ch]), 100, 28),
			formatDB(m.rms[ch]),
			formatDB(m.peak[ch])))
	}
	return s.String()
}

func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " muted"
	}

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %3d%%%-25s │\n",
		renderBar(m.volume, 100, 10), m.volume, muteIcon)
}

func (m Model) renderStats() string {
	s := fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Tap:    %-9s delivered %-8d dropped %-8d │
`, m.tapState, m.delivered, m.dropped)

	if m.recording != "" {
		s += fmt.Sprintf("│ Rec:    %-24s %8d frames %4d lost │\n",
			truncate(m.recording, 24), m.recFrames, m.recDrops)
	}
	if m.lastErr != "" {
		s += fmt.Sprintf("│ Error:  %-44s │\n", truncate(m.lastErr, 44))
	}

	return s
}

func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Session: %-41s │
│   Render failures: %-33d │
`, m.session, m.errors)
}

func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  space:Pause  d:Debug  q:Quit    │
└──────────────────────────────────────────────────────┘
`
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.send(m.ctrl.quitChan(), struct{}{})
		return m, tea.Quit
	case "up":
		m.volume = min(m.volume+5, 100)
		m.sendVolume()
	case "down":
		m.volume = max(m.volume-5, 0)
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case " ":
		m.send(m.ctrl.pauseChan(), struct{}{})
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

func (m Model) send(ch chan struct{}, v struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- v:
	default:
	}
}

func (c *Controls) quitChan() chan struct{} {
	if c == nil {
		return nil
	}
	return c.Quit
}

func (c *Controls) pauseChan() chan struct{} {
	if c == nil {
		return nil
	}
	return c.Pause
}

func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Elapsed != 0 {
		m.elapsed = msg.Elapsed
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if msg.Session != "" {
		m.session = msg.Session
	}
	if msg.TapState != "" {
		m.tapState = msg.TapState
	}
	if msg.RMS != nil {
		m.rms = msg.RMS
		m.peak = msg.Peak
	}
	if msg.Delivered != 0 || msg.Dropped != 0 {
		m.delivered = msg.Delivered
		m.dropped = msg.Dropped
	}
	if msg.Errors != 0 {
		m.errors = msg.Errors
	}
	if msg.Err != nil {
		m.lastErr = msg.Err.Error()
	}
	if msg.Recording != "" {
		m.recording = msg.Recording
		m.recFrames = msg.RecFrames
		m.recDrops = msg.RecDrops
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	var bar strings.Builder
	for i := range width {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	return bar.String()
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelLabel(ch, channels int) string {
	switch {
	case channels == 1:
		return "Mono"
	case channels == 2 && ch == 0:
		return "L"
	case channels == 2 && ch == 1:
		return "R"
	default:
		return fmt.Sprintf("Ch%d", ch+1)
	}
}

// levelPercent maps a linear level onto a 60 dB meter scale.
func levelPercent(level float64) int {
	if level <= 0 {
		return 0
	}
	db := 20 * math.Log10(level)
	return max(0, min(100, int((db+60)/60*100)))
}

func formatDB(level float64) string {
	if level <= 0 {
		return "-inf"
	}
	return fmt.Sprintf("%.1fdB", 20*math.Log10(level))
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
