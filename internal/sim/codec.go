package sim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Binary timeline format, version 1.
//
// The layout is fixed and big-endian so serialized timelines round-trip
// bit-for-bit across platforms. The header carries a version tag for
// forward compatibility and the seal-time fingerprint; Decode recomputes
// the fingerprint from the decoded body and rejects any mismatch.
//
//	magic       [4]byte "ARNT"
//	version     uint8
//	fingerprint uint64
//	topology    uint64
//	duration    uint64
//	actor       uint16 length + bytes
//	archetype   uint16 length + bytes
//	count       uint32
//	commands    count * (tick uint64, kind uint8, payload)
const (
	codecMagic   = "ARNT"
	codecVersion = 1
)

// Encode serializes a sealed timeline to its versioned binary form.
func Encode(t *Timeline) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(codecMagic)
	buf.WriteByte(codecVersion)

	writeU64 := func(v uint64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		buf.Write(b[:])
	}
	writeString := func(s string) error {
		if len(s) > 0xFFFF {
			return fmt.Errorf("sim: string field too long (%d bytes)", len(s))
		}
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(len(s)))
		buf.Write(b[:])
		buf.WriteString(s)
		return nil
	}

	writeU64(t.fingerprint)
	writeU64(t.topology)
	writeU64(uint64(t.duration))
	if err := writeString(t.actor); err != nil {
		return nil, err
	}
	if err := writeString(string(t.archetype)); err != nil {
		return nil, err
	}

	var b4 [4]byte
	binary.BigEndian.PutUint32(b4[:], uint32(len(t.commands)))
	buf.Write(b4[:])

	for i := range t.commands {
		c := &t.commands[i]
		writeU64(uint64(c.Tick))
		buf.WriteByte(byte(c.Kind))
		switch c.Kind {
		case KindMove:
			buf.WriteByte(byte(c.Move.Dir))
		case KindCast:
			var b2 [2]byte
			binary.BigEndian.PutUint16(b2[:], uint16(c.Cast.Ability))
			buf.Write(b2[:])
			if c.Cast.Target != nil {
				buf.WriteByte(1)
				var b8 [8]byte
				binary.BigEndian.PutUint32(b8[:4], uint32(c.Cast.Target.X))
				binary.BigEndian.PutUint32(b8[4:], uint32(c.Cast.Target.Y))
				buf.Write(b8[:])
			} else {
				buf.WriteByte(0)
			}
		case KindChangeArena:
			var b4a [4]byte
			binary.BigEndian.PutUint16(b4a[:2], uint16(c.ChangeArena.From))
			binary.BigEndian.PutUint16(b4a[2:], uint16(c.ChangeArena.To))
			buf.Write(b4a[:])
		default:
			return nil, fmt.Errorf("sim: cannot encode command kind %d", c.Kind)
		}
	}
	return buf.Bytes(), nil
}

// Decode reconstructs a timeline from its binary form, verifying the
// embedded fingerprint against the decoded contents. A mismatch yields
// ErrTimelineCorrupted: corrupted timelines are discarded, never repaired.
func Decode(data []byte) (*Timeline, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != codecMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrTimelineCorrupted)
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrTimelineCorrupted)
	}
	if version > codecVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}

	readU64 := func() (uint64, error) {
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("%w: truncated", ErrTimelineCorrupted)
		}
		return binary.BigEndian.Uint64(b[:]), nil
	}
	readU32 := func() (uint32, error) {
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("%w: truncated", ErrTimelineCorrupted)
		}
		return binary.BigEndian.Uint32(b[:]), nil
	}
	readU16 := func() (uint16, error) {
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("%w: truncated", ErrTimelineCorrupted)
		}
		return binary.BigEndian.Uint16(b[:]), nil
	}
	readString := func() (string, error) {
		n, err := readU16()
		if err != nil {
			return "", err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return "", fmt.Errorf("%w: truncated string", ErrTimelineCorrupted)
		}
		return string(b), nil
	}

	fingerprint, err := readU64()
	if err != nil {
		return nil, err
	}
	topology, err := readU64()
	if err != nil {
		return nil, err
	}
	duration, err := readU64()
	if err != nil {
		return nil, err
	}
	actor, err := readString()
	if err != nil {
		return nil, err
	}
	archetype, err := readString()
	if err != nil {
		return nil, err
	}
	count, err := readU32()
	if err != nil {
		return nil, err
	}

	t := &Timeline{
		actor:     actor,
		archetype: Archetype(archetype),
		duration:  Tick(duration),
		topology:  topology,
		commands:  make([]Command, 0, count),
	}

	var lastTick Tick
	for i := uint32(0); i < count; i++ {
		tick, err := readU64()
		if err != nil {
			return nil, err
		}
		if i > 0 && Tick(tick) <= lastTick {
			return nil, fmt.Errorf("%w: non-monotonic command ticks", ErrTimelineCorrupted)
		}
		lastTick = Tick(tick)

		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated command", ErrTimelineCorrupted)
		}
		cmd := Command{Tick: Tick(tick), Actor: actor, Kind: CommandKind(kindByte)}
		switch cmd.Kind {
		case KindMove:
			dir, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated move", ErrTimelineCorrupted)
			}
			if dir > byte(DirWest) {
				return nil, fmt.Errorf("%w: invalid direction %d", ErrTimelineCorrupted, dir)
			}
			cmd.Move = &MoveCommand{Dir: Direction(dir)}
		case KindCast:
			ability, err := readU16()
			if err != nil {
				return nil, err
			}
			hasTarget, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated cast", ErrTimelineCorrupted)
			}
			cast := &CastCommand{Ability: AbilityID(ability)}
			if hasTarget == 1 {
				var b [8]byte
				if _, err := io.ReadFull(r, b[:]); err != nil {
					return nil, fmt.Errorf("%w: truncated cast target", ErrTimelineCorrupted)
				}
				cast.Target = &GridPoint{
					X: int32(binary.BigEndian.Uint32(b[:4])),
					Y: int32(binary.BigEndian.Uint32(b[4:])),
				}
			}
			cmd.Cast = cast
		case KindChangeArena:
			from, err := readU16()
			if err != nil {
				return nil, err
			}
			to, err := readU16()
			if err != nil {
				return nil, err
			}
			cmd.ChangeArena = &ChangeArenaCommand{From: ArenaID(from), To: ArenaID(to)}
		default:
			return nil, fmt.Errorf("%w: unknown command kind %d", ErrTimelineCorrupted, kindByte)
		}
		t.commands = append(t.commands, cmd)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTimelineCorrupted, r.Len())
	}

	t.fingerprint = t.computeFingerprint()
	if t.fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: fingerprint mismatch (stored %x, computed %x)",
			ErrTimelineCorrupted, fingerprint, t.fingerprint)
	}
	return t, nil
}
