// SPDX-License-Identifier: EPL-2.0

package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	t.Parallel()

	m := NewModel("tone.wav", nil)

	if m.volume != 100 {
		t.Errorf("expected default volume 100, got %d", m.volume)
	}
	if m.muted {
		t.Error("expected muted to be false initially")
	}
	if m.showDebug {
		t.Error("expected showDebug to be false initially")
	}
	if m.View() != "Loading..." {
		t.Errorf("expected loading view before the first resize, got %q", m.View())
	}
}

func TestApplyStatus(t *testing.T) {
	t.Parallel()

	m := NewModel("tone.wav", nil)
	m.applyStatus(StatusMsg{
		Format:    "44100Hz 2ch 16-bit",
		State:     "playing",
		Elapsed:   65 * time.Second,
		TapState:  "attached",
		RMS:       []float64{0.5, 0.25},
		Peak:      []float64{1, 0.5},
		Delivered: 12,
		Dropped:   1,
	})

	if m.format != "44100Hz 2ch 16-bit" || m.state != "playing" {
		t.Errorf("format/state not applied: %q %q", m.format, m.state)
	}
	if m.delivered != 12 || m.dropped != 1 {
		t.Errorf("expected 12 delivered 1 dropped, got %d %d", m.delivered, m.dropped)
	}

	// zero fields keep what is there
	m.applyStatus(StatusMsg{Err: errors.New("render failed")})

	if m.state != "playing" || len(m.rms) != 2 {
		t.Error("empty status update overwrote the model")
	}
	if m.lastErr != "render failed" {
		t.Errorf("expected last error to be set, got %q", m.lastErr)
	}
}

func TestHandleKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		keys   []tea.KeyMsg
		volume int
		muted  bool
	}{
		{
			name:   "up clamps at 100",
			keys:   []tea.KeyMsg{{Type: tea.KeyUp}},
			volume: 100,
		},
		{
			name:   "down twice",
			keys:   []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}},
			volume: 90,
		},
		{
			name:   "mute",
			keys:   []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune{'m'}}},
			volume: 100,
			muted:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := NewControls()
			var model tea.Model = NewModel("x", ctrl)
			for _, k := range tt.keys {
				model, _ = model.Update(k)
			}

			m := model.(Model)
			if m.volume != tt.volume || m.muted != tt.muted {
				t.Errorf("expected volume %d muted %v, got %d %v", tt.volume, tt.muted, m.volume, m.muted)
			}

			var last *VolumeChangeMsg
			for len(ctrl.Changes) > 0 {
				msg := <-ctrl.Changes
				last = &msg
			}
			if last == nil {
				t.Fatal("no volume change sent")
			}
			if last.Volume != tt.volume || last.Muted != tt.muted {
				t.Errorf("sent %+v", *last)
			}
		})
	}
}

func TestPauseAndQuitKeys(t *testing.T) {
	t.Parallel()

	ctrl := NewControls()
	m := NewModel("x", ctrl)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd != nil {
		t.Error("pause should not return a command")
	}
	select {
	case <-ctrl.Pause:
	default:
		t.Error("expected a pause request")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected a quit request")
	}
}

func TestNilControls(t *testing.T) {
	t.Parallel()

	m := NewModel("x", nil)
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyUp},
		{Type: tea.KeySpace, Runes: []rune{' '}},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		m.Update(k)
	}
}

func TestView(t *testing.T) {
	t.Parallel()

	var model tea.Model = NewModel("tone.wav", nil)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(StatusMsg{
		RMS:       []float64{0.5, 0},
		Peak:      []float64{1, 0},
		Recording: "out.wav",
		RecFrames: 4410,
	})

	view := model.View()
	for _, want := range []string{"tone.wav", "-6.0dB", "0.0dB", "-inf", "out.wav", "4410"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLevelPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level float64
		want  int
	}{
		{0, 0},
		{1, 100},
		{2, 100},
		{0.001, 0},
		{0.1, 66}, // -20 dB
	}

	for _, tt := range tests {
		if got := levelPercent(tt.level); got != tt.want {
			t.Errorf("levelPercent(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	if got := formatElapsed(125*time.Second + 400*time.Millisecond); got != "02:05" {
		t.Errorf("got %q", got)
	}
}
