package sim

import "encoding/binary"

// DeltaKind discriminates the state changes the playback engine and arena
// scheduler emit each tick.
type DeltaKind uint8

const (
	// DeltaMove records a position change.
	DeltaMove DeltaKind = iota + 1
	// DeltaCooldown records an ability entering cooldown.
	DeltaCooldown
	// DeltaArena records an arena membership change.
	DeltaArena
	// DeltaLoop records a playback cursor wrapping to tick zero.
	DeltaLoop
	// DeltaDespawn records a ghost being removed at end of timeline.
	DeltaDespawn
)

// String returns a human-readable name for the delta kind.
func (k DeltaKind) String() string {
	switch k {
	case DeltaMove:
		return "Move"
	case DeltaCooldown:
		return "Cooldown"
	case DeltaArena:
		return "Arena"
	case DeltaLoop:
		return "Loop"
	case DeltaDespawn:
		return "Despawn"
	default:
		return "Unknown"
	}
}

// StateDelta describes one deterministic change to an entity's logical
// state during a tick. The arena scheduler applies deltas to committed
// state; the presentation layer may also consume them for effects.
type StateDelta struct {
	Entity EntityID
	Tick   Tick
	Kind   DeltaKind

	// DeltaMove
	From, To GridPoint

	// DeltaCooldown
	Ability AbilityID
	ReadyAt Tick

	// DeltaArena
	FromArena, ToArena ArenaID
}

// Digest accumulates a canonical FNV-64a hash over a delta stream. Two
// replays are bit-identical exactly when their digests match; this is the
// comparison primitive behind the determinism guarantees.
type Digest struct {
	h     uint64
	count uint64
}

// NewDigest creates an empty delta digest.
func NewDigest() *Digest {
	return &Digest{h: fnvOffset64}
}

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func (d *Digest) write(b []byte) {
	for _, c := range b {
		d.h ^= uint64(c)
		d.h *= fnvPrime64
	}
}

func (d *Digest) writeU64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	d.write(b[:])
}

// Add folds one delta into the digest.
func (d *Digest) Add(delta StateDelta) {
	d.count++
	d.writeU64(uint64(delta.Entity))
	d.writeU64(uint64(delta.Tick))
	d.write([]byte{byte(delta.Kind)})
	d.writeU64(uint64(uint32(delta.From.X)))
	d.writeU64(uint64(uint32(delta.From.Y)))
	d.writeU64(uint64(uint32(delta.To.X)))
	d.writeU64(uint64(uint32(delta.To.Y)))
	d.writeU64(uint64(delta.Ability))
	d.writeU64(uint64(delta.ReadyAt))
	d.writeU64(uint64(delta.FromArena))
	d.writeU64(uint64(delta.ToArena))
}

// AddAll folds a slice of deltas into the digest in order.
func (d *Digest) AddAll(deltas []StateDelta) {
	for _, delta := range deltas {
		d.Add(delta)
	}
}

// Sum returns the digest value.
func (d *Digest) Sum() uint64 {
	return d.h
}

// Count returns how many deltas have been folded in.
func (d *Digest) Count() uint64 {
	return d.count
}
