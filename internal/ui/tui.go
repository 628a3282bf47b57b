// SPDX-License-Identifier: EPL-2.0

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg is sent on Controls.Changes when the user changes the
// volume or mute state.
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// Controls carries user input out of the TUI.
type Controls struct {
	Changes chan VolumeChangeMsg
	Pause   chan struct{}
	Quit    chan struct{}
}

func NewControls() *Controls {
	return &Controls{
		Changes: make(chan VolumeChangeMsg, 10),
		Pause:   make(chan struct{}, 1),
		Quit:    make(chan struct{}, 1),
	}
}

// NewModel creates the TUI model for a track.
func NewModel(track string, ctrl *Controls) Model {
	return Model{
		track:  track,
		volume: 100,
		state:  "stopped",
		ctrl:   ctrl,
	}
}

// Run creates the TUI program. The caller starts it with Run.
func Run(track string, ctrl *Controls) *tea.Program {
	return tea.NewProgram(NewModel(track, ctrl), tea.WithAltScreen())
}
