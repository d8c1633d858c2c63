package arena

import (
	"errors"
	"testing"

	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

const testTopology = 42

var testBounds = sim.GridRect{W: 20, H: 20}

func newTestArena(maxGhosts int) *Scheduler {
	return New(Config{
		ID:        1,
		Bounds:    testBounds,
		MaxGhosts: maxGhosts,
		Topology:  testTopology,
	})
}

func sealTimeline(t *testing.T, actor string, duration sim.Tick, cmds ...sim.Command) *sim.Timeline {
	t.Helper()
	l := sim.NewLog(actor)
	for _, c := range cmds {
		if err := l.Append(c); err != nil {
			t.Fatalf("Append(%s) failed: %v", c, err)
		}
	}
	return l.Seal(duration, "hunter", testTopology)
}

func tickN(t *testing.T, a *Scheduler, start sim.Tick, n int) []TickReport {
	t.Helper()
	reports := make([]TickReport, 0, n)
	for i := 0; i < n; i++ {
		r, err := a.AdvanceTick(start+sim.Tick(i), recorder.RawInput{})
		if err != nil {
			t.Fatalf("AdvanceTick(%d) failed: %v", start+sim.Tick(i), err)
		}
		reports = append(reports, r)
	}
	return reports
}

func TestSpawnGhostCapacity(t *testing.T) {
	a := newTestArena(2)
	tl := sealTimeline(t, "hero-1", 120)

	if _, err := a.SpawnGhost(1, tl, sim.GridPoint{X: 1, Y: 1}, playback.PolicyLoop); err != nil {
		t.Fatalf("SpawnGhost(1) failed: %v", err)
	}
	if _, err := a.SpawnGhost(2, tl, sim.GridPoint{X: 2, Y: 1}, playback.PolicyLoop); err != nil {
		t.Fatalf("SpawnGhost(2) failed: %v", err)
	}

	_, err := a.SpawnGhost(3, tl, sim.GridPoint{X: 3, Y: 1}, playback.PolicyLoop)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("SpawnGhost(3) = %v, want ErrCapacityExceeded", err)
	}
	// Existing ghosts unaffected
	if a.GhostCount() != 2 {
		t.Errorf("GhostCount() = %d, want 2", a.GhostCount())
	}
}

func TestSpawnGhostTopologyMismatch(t *testing.T) {
	a := newTestArena(8)
	l := sim.NewLog("hero-1")
	tl := l.Seal(120, "hunter", 999) // wrong topology

	_, err := a.SpawnGhost(1, tl, sim.GridPoint{X: 1, Y: 1}, playback.PolicyLoop)
	if !errors.Is(err, sim.ErrTimelineCorrupted) {
		t.Errorf("SpawnGhost(wrong topology) = %v, want ErrTimelineCorrupted", err)
	}
}

func TestCollisionLowerIDWins(t *testing.T) {
	a := newTestArena(8)

	// Ghost 1 moves east into (6,5); ghost 2 moves west into (6,5).
	tl1 := sealTimeline(t, "hero-1", 120, sim.NewMove(0, "hero-1", sim.DirEast))
	tl2 := sealTimeline(t, "hero-2", 120, sim.NewMove(0, "hero-2", sim.DirWest))

	g1, err := a.SpawnGhost(1, tl1, sim.GridPoint{X: 5, Y: 5}, playback.PolicyLoop)
	if err != nil {
		t.Fatalf("SpawnGhost(1) failed: %v", err)
	}
	g2, err := a.SpawnGhost(2, tl2, sim.GridPoint{X: 7, Y: 5}, playback.PolicyLoop)
	if err != nil {
		t.Fatalf("SpawnGhost(2) failed: %v", err)
	}

	tickN(t, a, 0, 1)

	if want := (sim.GridPoint{X: 6, Y: 5}); g1.Pos != want {
		t.Errorf("ghost 1 pos = %v, want %v (lower ID keeps the cell)", g1.Pos, want)
	}
	if want := (sim.GridPoint{X: 7, Y: 5}); g2.Pos != want {
		t.Errorf("ghost 2 pos = %v, want reverted to %v", g2.Pos, want)
	}
}

func TestCollisionResolutionIsDeterministic(t *testing.T) {
	run := func() uint64 {
		a := newTestArena(8)
		tl1 := sealTimeline(t, "hero-1", 60, sim.NewMove(0, "hero-1", sim.DirEast))
		tl2 := sealTimeline(t, "hero-2", 60, sim.NewMove(0, "hero-2", sim.DirWest))
		if _, err := a.SpawnGhost(1, tl1, sim.GridPoint{X: 5, Y: 5}, playback.PolicyLoop); err != nil {
			t.Fatalf("SpawnGhost failed: %v", err)
		}
		if _, err := a.SpawnGhost(2, tl2, sim.GridPoint{X: 7, Y: 5}, playback.PolicyLoop); err != nil {
			t.Fatalf("SpawnGhost failed: %v", err)
		}
		digest := sim.NewDigest()
		for _, r := range tickN(t, a, 0, 60) {
			digest.AddAll(r.Deltas)
		}
		return digest.Sum()
	}

	if run() != run() {
		t.Error("two identical arena runs produced different delta digests")
	}
}

func TestDespawnRemovedAtTickBoundary(t *testing.T) {
	a := newTestArena(8)
	tl := sealTimeline(t, "hero-1", 10)

	if _, err := a.SpawnGhost(1, tl, sim.GridPoint{X: 1, Y: 1}, playback.PolicyDespawn); err != nil {
		t.Fatalf("SpawnGhost failed: %v", err)
	}

	tickN(t, a, 0, 9)
	if a.GhostCount() != 1 {
		t.Fatalf("GhostCount() = %d before end of timeline, want 1", a.GhostCount())
	}

	tickN(t, a, 9, 1)
	if a.GhostCount() != 0 {
		t.Errorf("GhostCount() = %d after despawn tick, want 0", a.GhostCount())
	}
}

func TestLiveCaptureDrivesActor(t *testing.T) {
	a := newTestArena(8)
	rec := recorder.New(recorder.Config{
		Actor:     "player",
		Archetype: "hunter",
		Duration:  120,
		Topology:  testTopology,
		Arena:     1,
	})
	state := &sim.ActorState{ID: 100, Actor: "player", Archetype: "hunter", Pos: sim.GridPoint{X: 3, Y: 3}}
	if err := a.AttachLive(rec, state, 0); err != nil {
		t.Fatalf("AttachLive() failed: %v", err)
	}

	r, err := a.AdvanceTick(0, recorder.RawInput{MoveX: recorder.FullDeflection})
	if err != nil {
		t.Fatalf("AdvanceTick() failed: %v", err)
	}
	if want := (sim.GridPoint{X: 4, Y: 3}); state.Pos != want {
		t.Errorf("live actor pos = %v, want %v", state.Pos, want)
	}
	if len(r.Deltas) != 1 || r.Deltas[0].Kind != sim.DeltaMove {
		t.Errorf("deltas = %v, want one Move", r.Deltas)
	}
}

func TestLiveRecordingSealsAtCycleEnd(t *testing.T) {
	a := newTestArena(8)
	rec := recorder.New(recorder.Config{
		Actor:     "player",
		Archetype: "hunter",
		Duration:  10,
		Topology:  testTopology,
		Arena:     1,
	})
	state := &sim.ActorState{ID: 100, Actor: "player", Pos: sim.GridPoint{X: 3, Y: 3}}
	if err := a.AttachLive(rec, state, 0); err != nil {
		t.Fatalf("AttachLive() failed: %v", err)
	}

	reports := tickN(t, a, 0, 11)
	var sealed *sim.Timeline
	for _, r := range reports {
		if r.Sealed != nil {
			sealed = r.Sealed
		}
	}
	if sealed == nil {
		t.Fatal("recording did not seal at cycle end")
	}
	if sealed.Duration() != 10 {
		t.Errorf("sealed Duration() = %d, want 10", sealed.Duration())
	}
	if rec.State() != recorder.StateSealed {
		t.Errorf("recorder state = %s, want Sealed", rec.State())
	}
}

func TestGhostArenaTransferReported(t *testing.T) {
	a := newTestArena(8)
	tl := sealTimeline(t, "hero-1", 120, sim.NewChangeArena(3, "hero-1", 1, 2))

	if _, err := a.SpawnGhost(1, tl, sim.GridPoint{X: 5, Y: 5}, playback.PolicyLoop); err != nil {
		t.Fatalf("SpawnGhost failed: %v", err)
	}

	reports := tickN(t, a, 0, 4)
	var transfers []Transfer
	for _, r := range reports {
		transfers = append(transfers, r.Transfers...)
	}
	if len(transfers) != 1 {
		t.Fatalf("transfers = %v, want exactly one", transfers)
	}
	if transfers[0].From != 1 || transfers[0].To != 2 {
		t.Errorf("transfer = %d->%d, want 1->2", transfers[0].From, transfers[0].To)
	}

	// Session-side handoff
	g, timeline, ok := a.ReleaseGhost(1)
	if !ok {
		t.Fatal("ReleaseGhost(1) failed")
	}
	if timeline != tl {
		t.Error("released timeline is not the spawned one")
	}
	b := New(Config{ID: 2, Bounds: testBounds, MaxGhosts: 8, Topology: testTopology})
	b.AdoptGhost(g, timeline)
	if b.GhostCount() != 1 || a.GhostCount() != 0 {
		t.Errorf("ghost counts after transfer: src %d dst %d, want 0 and 1", a.GhostCount(), b.GhostCount())
	}
}

func TestPausedArenaStaysSynchronized(t *testing.T) {
	a := newTestArena(8)
	tl := sealTimeline(t, "hero-1", 120, sim.NewMove(0, "hero-1", sim.DirEast))
	g, err := a.SpawnGhost(1, tl, sim.GridPoint{X: 5, Y: 5}, playback.PolicyLoop)
	if err != nil {
		t.Fatalf("SpawnGhost failed: %v", err)
	}

	a.SetPaused(true)
	tickN(t, a, 0, 3)

	if a.Tick() != 3 {
		t.Errorf("Tick() = %d, want 3 (paused arenas keep the tick synced)", a.Tick())
	}
	if g.Cursor != 0 {
		t.Errorf("cursor = %d, want 0 (paused arenas freeze playback)", g.Cursor)
	}

	a.SetPaused(false)
	tickN(t, a, 3, 1)
	if g.Cursor != 1 {
		t.Errorf("cursor = %d after resume, want 1", g.Cursor)
	}
}

func TestTickDriftPanics(t *testing.T) {
	a := newTestArena(8)
	defer func() {
		if recover() == nil {
			t.Error("AdvanceTick with a drifted session tick should panic")
		}
	}()
	a.AdvanceTick(5, recorder.RawInput{}) // arena is at tick 0
}
