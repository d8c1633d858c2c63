package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// scriptFile is the YAML layout of a user-defined script.
type scriptFile struct {
	ID     string      `yaml:"id"`
	Title  string      `yaml:"title"`
	Frames []frameSpec `yaml:"frames"`
}

// frameSpec describes input active at one tick, optionally held for a
// run of ticks.
type frameSpec struct {
	At   uint64 `yaml:"at"`
	Hold uint64 `yaml:"hold"` // additional ticks the input stays active

	MoveX       int32  `yaml:"move_x"`
	MoveY       int32  `yaml:"move_y"`
	Cast        uint16 `yaml:"cast"`
	Target      *cell  `yaml:"target"`
	ChangeArena uint16 `yaml:"change_arena"`
}

type cell struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
}

// fileScript is a Script backed by an expanded tick table. Lookup misses
// return neutral input.
type fileScript struct {
	id     string
	title  string
	frames map[sim.Tick]recorder.RawInput
}

func (s *fileScript) ID() string    { return s.id }
func (s *fileScript) Title() string { return s.title }

func (s *fileScript) Frame(tick sim.Tick) recorder.RawInput {
	return s.frames[tick]
}

// LoadFile parses a YAML script file. Overlapping frames resolve in file
// order: a later frame overwrites the ticks it shares with an earlier
// one.
func LoadFile(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: cannot read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML script bytes.
func Parse(data []byte) (Script, error) {
	var file scriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("script: cannot parse: %w", err)
	}
	if file.ID == "" {
		return nil, fmt.Errorf("script: missing id")
	}
	if file.Title == "" {
		file.Title = file.ID
	}

	frames := make(map[sim.Tick]recorder.RawInput, len(file.Frames))
	for _, f := range file.Frames {
		in := recorder.RawInput{
			MoveX:       f.MoveX,
			MoveY:       f.MoveY,
			Cast:        sim.AbilityID(f.Cast),
			ChangeArena: sim.ArenaID(f.ChangeArena),
		}
		if f.Target != nil {
			in.CastTarget = &sim.GridPoint{X: f.Target.X, Y: f.Target.Y}
		}
		for t := f.At; t <= f.At+f.Hold; t++ {
			frames[sim.Tick(t)] = in
		}
	}

	return &fileScript{id: file.ID, title: file.Title, frames: frames}, nil
}
