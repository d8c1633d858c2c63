// Package script provides deterministic input sources for driving
// recordings without a human at the keyboard. A script is a pure function
// of the tick: the same script always produces the same command stream,
// which makes scripted recordings reproducible end to end.
package script

import (
	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// Script is the interface all input scripts implement. Scripts contain
// pure logic with no external dependencies; the simulate command handles
// timing and recording.
type Script interface {
	// ID returns a unique identifier for this script (e.g., "patrol").
	// Used for CLI commands.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Frame returns the raw input for one recording tick. Must be a pure
	// function of the tick: no retained state, no randomness outside a
	// fixed seed.
	Frame(tick sim.Tick) recorder.RawInput
}

// Func adapts a plain function into a Script.
type Func struct {
	Name  string
	Label string
	Fn    func(tick sim.Tick) recorder.RawInput
}

func (f Func) ID() string    { return f.Name }
func (f Func) Title() string { return f.Label }

func (f Func) Frame(tick sim.Tick) recorder.RawInput {
	return f.Fn(tick)
}
