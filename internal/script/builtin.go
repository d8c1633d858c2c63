package script

import (
	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

func init() {
	Register("patrol", func() Script {
		return Func{Name: "patrol", Label: "Patrol", Fn: patrol}
	})
	Register("weaver", func() Script {
		return Func{Name: "weaver", Label: "Weaver", Fn: weaver}
	})
	Register("idle", func() Script {
		return Func{Name: "idle", Label: "Idle", Fn: idle}
	})
}

// patrol walks east for half a 60-tick period and west for the other
// half, casting ability 1 at each turning point.
func patrol(tick sim.Tick) recorder.RawInput {
	phase := tick % 60
	if phase == 0 || phase == 30 {
		return recorder.RawInput{Cast: 1}
	}
	if phase < 30 {
		return recorder.RawInput{MoveX: recorder.FullDeflection}
	}
	return recorder.RawInput{MoveX: -recorder.FullDeflection}
}

// weaver traces a small square, one edge per 10 ticks, with a cast on
// every corner.
func weaver(tick sim.Tick) recorder.RawInput {
	phase := tick % 40
	if phase%10 == 0 {
		return recorder.RawInput{Cast: 2}
	}
	switch phase / 10 {
	case 0:
		return recorder.RawInput{MoveX: recorder.FullDeflection}
	case 1:
		return recorder.RawInput{MoveY: recorder.FullDeflection}
	case 2:
		return recorder.RawInput{MoveX: -recorder.FullDeflection}
	default:
		return recorder.RawInput{MoveY: -recorder.FullDeflection}
	}
}

// idle produces no input at all: the recording seals into an empty
// timeline whose ghost glides in place.
func idle(sim.Tick) recorder.RawInput {
	return recorder.RawInput{}
}
