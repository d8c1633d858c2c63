package sim

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
)

// Timeline is a sealed, immutable command log plus metadata: a fixed
// Duration (one cycle length), the origin actor archetype, the arena
// topology it was recorded against, and a content fingerprint used to
// detect corruption. Sealed timelines are freely shared across goroutines
// without locking.
type Timeline struct {
	actor       string
	archetype   Archetype
	duration    Tick
	topology    uint64
	fingerprint uint64
	commands    []Command
}

// Actor returns the recorded actor's identifier.
func (t *Timeline) Actor() string { return t.actor }

// Archetype returns the origin actor archetype.
func (t *Timeline) Archetype() Archetype { return t.archetype }

// Duration returns the fixed cycle length in ticks.
func (t *Timeline) Duration() Tick { return t.duration }

// Topology returns the arena-topology hash the timeline was recorded
// against. A timeline replayed against a different topology is rejected.
func (t *Timeline) Topology() uint64 { return t.topology }

// Fingerprint returns the FNV-64a content fingerprint computed at seal time.
func (t *Timeline) Fingerprint() uint64 { return t.fingerprint }

// Len returns the number of recorded commands.
func (t *Timeline) Len() int { return len(t.commands) }

// Commands returns a copy of the command sequence. Callers cannot mutate
// the timeline through the returned slice.
func (t *Timeline) Commands() []Command {
	out := make([]Command, len(t.commands))
	copy(out, t.commands)
	return out
}

// CommandAt returns the command issued exactly at the given tick, or nil if
// none was. Most ticks have no command: absence means "continue previous
// state", not an error. Lookup is a binary search over the tick-ordered
// command sequence.
func (t *Timeline) CommandAt(tick Tick) *Command {
	i := sort.Search(len(t.commands), func(i int) bool {
		return t.commands[i].Tick >= tick
	})
	if i < len(t.commands) && t.commands[i].Tick == tick {
		cmd := t.commands[i]
		return &cmd
	}
	return nil
}

// Equal reports whether two timelines are bit-identical: same metadata and
// the same command sequence.
func (t *Timeline) Equal(other *Timeline) bool {
	if t.actor != other.actor || t.archetype != other.archetype ||
		t.duration != other.duration || t.topology != other.topology ||
		t.fingerprint != other.fingerprint || len(t.commands) != len(other.commands) {
		return false
	}
	for i := range t.commands {
		if !t.commands[i].Equal(other.commands[i]) {
			return false
		}
	}
	return true
}

// computeFingerprint hashes the canonical encoding of the timeline body.
// FNV-64a over a fixed-layout byte stream is platform independent, so the
// same timeline fingerprints identically on every machine.
func (t *Timeline) computeFingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeU64 := func(v uint64) {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeString := func(s string) {
		writeU64(uint64(len(s)))
		h.Write([]byte(s))
	}

	writeString(t.actor)
	writeString(string(t.archetype))
	writeU64(uint64(t.duration))
	writeU64(t.topology)
	writeU64(uint64(len(t.commands)))
	for i := range t.commands {
		c := &t.commands[i]
		writeU64(uint64(c.Tick))
		h.Write([]byte{byte(c.Kind)})
		switch c.Kind {
		case KindMove:
			h.Write([]byte{byte(c.Move.Dir)})
		case KindCast:
			writeU64(uint64(c.Cast.Ability))
			if c.Cast.Target != nil {
				h.Write([]byte{1})
				writeU64(uint64(uint32(c.Cast.Target.X)))
				writeU64(uint64(uint32(c.Cast.Target.Y)))
			} else {
				h.Write([]byte{0})
			}
		case KindChangeArena:
			writeU64(uint64(c.ChangeArena.From))
			writeU64(uint64(c.ChangeArena.To))
		}
	}
	return h.Sum64()
}

// TopologyHash folds an ordered arena layout into a single comparable
// value. Sessions compute it from their configuration; recorders stamp it
// into timelines at seal time.
func TopologyHash(arenas []ArenaID, bounds GridRect) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(uint64(bounds.W))
	write(uint64(bounds.H))
	write(uint64(len(arenas)))
	for _, id := range arenas {
		write(uint64(id))
	}
	return h.Sum64()
}
