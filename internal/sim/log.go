package sim

import "fmt"

// Log is an append-only, tick-ordered sequence of commands for exactly one
// actor. It is mutable only while open; Seal converts it into an immutable
// Timeline and the log cannot be written again afterwards.
type Log struct {
	actor    string
	commands []Command
	sealed   bool
}

// NewLog creates an open command log for the given actor.
func NewLog(actor string) *Log {
	return &Log{actor: actor}
}

// Actor returns the owning actor's identifier.
func (l *Log) Actor() string {
	return l.actor
}

// Len returns the number of recorded commands.
func (l *Log) Len() int {
	return len(l.commands)
}

// LastTick returns the tick of the most recent command and whether one exists.
func (l *Log) LastTick() (Tick, bool) {
	if len(l.commands) == 0 {
		return 0, false
	}
	return l.commands[len(l.commands)-1].Tick, true
}

// Append adds a command to the log. The command's tick must be strictly
// greater than the last entry's tick: equal ticks violate the one command
// per tick per actor invariant and are rejected with ErrOutOfOrder, the
// same as earlier ticks.
func (l *Log) Append(cmd Command) error {
	if l.sealed {
		return ErrLogSealed
	}
	if last, ok := l.LastTick(); ok && cmd.Tick <= last {
		return fmt.Errorf("%w: tick %d after tick %d", ErrOutOfOrder, cmd.Tick, last)
	}
	cmd.Actor = l.actor
	l.commands = append(l.commands, cmd)
	return nil
}

// Seal consumes the log and produces an immutable Timeline. Duration is
// fixed to the configured cycle length regardless of when the last command
// occurred: trailing empty ticks are implicit no-ops during playback.
// Topology binds the timeline to the arena layout it was recorded against.
func (l *Log) Seal(duration Tick, archetype Archetype, topology uint64) *Timeline {
	l.sealed = true
	commands := make([]Command, len(l.commands))
	copy(commands, l.commands)
	t := &Timeline{
		actor:     l.actor,
		archetype: archetype,
		duration:  duration,
		topology:  topology,
		commands:  commands,
	}
	t.fingerprint = t.computeFingerprint()
	return t
}
