// Package clock provides the two time sources of the simulation: a
// fixed-step accumulator that converts variable wall-clock deltas into a
// whole number of uniform simulation steps, and the session clock that is
// the single source of truth for the current tick across all arenas.
package clock

import (
	"errors"
	"time"

	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// ErrInvalidDelta is returned when Advance is called with a negative
// wall-clock delta. The clock itself never fails; the call does.
var ErrInvalidDelta = errors.New("clock: negative wall-clock delta")

// DefaultMaxSteps caps the steps produced by a single Advance call. After a
// long stall the excess accumulated time is discarded rather than deferred,
// which prevents the simulation from entering a catch-up spiral.
const DefaultMaxSteps = 5

// FixedStep accumulates wall-clock time and releases it as uniform
// simulation steps. Rendering rate and simulation rate stay decoupled: the
// caller advances by whatever wall delta elapsed and runs exactly the
// returned number of steps.
type FixedStep struct {
	step        time.Duration
	maxSteps    int
	accumulator time.Duration
}

// NewFixedStep creates a clock with the given step size. maxSteps <= 0
// selects DefaultMaxSteps.
func NewFixedStep(step time.Duration, maxSteps int) *FixedStep {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &FixedStep{step: step, maxSteps: maxSteps}
}

// NewFixedStepRate creates a clock running at the given ticks-per-second.
func NewFixedStepRate(tickRate int, maxSteps int) *FixedStep {
	if tickRate <= 0 {
		tickRate = 60
	}
	return NewFixedStep(time.Second/time.Duration(tickRate), maxSteps)
}

// StepSize returns the fixed step duration.
func (c *FixedStep) StepSize() time.Duration {
	return c.step
}

// Advance adds a wall-clock delta to the accumulator and returns how many
// whole simulation steps to run. The count is capped at maxSteps; any
// accumulated time beyond the cap is discarded. A negative delta is
// rejected with ErrInvalidDelta and leaves the accumulator untouched.
func (c *FixedStep) Advance(wallDelta time.Duration) (int, error) {
	if wallDelta < 0 {
		return 0, ErrInvalidDelta
	}
	c.accumulator += wallDelta

	steps := 0
	for c.accumulator >= c.step && steps < c.maxSteps {
		c.accumulator -= c.step
		steps++
	}
	if c.accumulator >= c.step {
		// Stalled past the cap: drop the remainder instead of deferring it.
		c.accumulator = c.accumulator % c.step
	}
	return steps, nil
}

// InterpolationAlpha returns the fraction of a step currently sitting in
// the accumulator, in [0, 1). It exists for presentation-layer smoothing
// only and must never feed back into simulation logic.
func (c *FixedStep) InterpolationAlpha() float64 {
	return float64(c.accumulator) / float64(c.step)
}

// Session is the master tick counter shared by every arena in a session.
// It is mutated only by the session manager, never concurrently: pause,
// resume and advance all happen on the single simulation goroutine.
type Session struct {
	tick   sim.Tick
	paused bool
}

// NewSession creates a session clock at tick zero, unpaused.
func NewSession() *Session {
	return &Session{}
}

// Tick returns the current tick.
func (s *Session) Tick() sim.Tick {
	return s.tick
}

// Paused reports whether the clock is frozen.
func (s *Session) Paused() bool {
	return s.paused
}

// Pause freezes the clock. Idempotent.
func (s *Session) Pause() {
	s.paused = true
}

// Resume unfreezes the clock. Idempotent.
func (s *Session) Resume() {
	s.paused = false
}

// Advance increments the tick by one. Returns false without advancing when
// the clock is paused.
func (s *Session) Advance() bool {
	if s.paused {
		return false
	}
	s.tick++
	return true
}
