// Package tui provides the Bubble Tea integration for the replay engine.
// It handles the terminal UI loop, input mapping, and session rendering.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is sent to trigger a render frame. The simulation itself runs
// on the fixed-step clock; frames only deliver wall-clock deltas to it.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends frame messages at the
// specified rate.
func frameCmd(frameRate int) tea.Cmd {
	interval := time.Second / time.Duration(frameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
