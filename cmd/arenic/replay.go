package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/session"
	"github.com/matthewharwood/arenic-replay/internal/sim"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var flagReplayTicks uint64

var replayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Replay a stored timeline headlessly",
	Long: `Spawn a stored timeline as a ghost in a fresh session, run it for
the given number of ticks, and print the digest of every state change it
produced. The digest is stable across machines: the same timeline always
prints the same digest.

Examples:
  arenic replay 3
  arenic replay 3 --ticks 600`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().Uint64Var(&flagReplayTicks, "ticks", 0, "Ticks to run (0 = two full cycles)")
}

// replayDigest spawns the timeline in a fresh session and returns the
// digest of the delta stream over the given number of ticks.
func replayDigest(cfgTimeline *sim.Timeline, mgrCfg session.Config, ticks sim.Tick) (uint64, uint64, error) {
	mgr, err := session.New(mgrCfg)
	if err != nil {
		return 0, 0, err
	}
	spawn := sim.GridPoint{X: mgrCfg.Bounds.W / 2, Y: mgrCfg.Bounds.H / 2}
	if _, err := mgr.SpawnGhost(mgrCfg.Arenas[0], cfgTimeline, spawn, mgrCfg.EndPolicy); err != nil {
		return 0, 0, err
	}

	step := time.Second / time.Duration(mgrCfg.TickRate)
	digest := sim.NewDigest()
	for tick := sim.Tick(0); tick < ticks; tick++ {
		report, err := mgr.Advance(step, recorder.RawInput{})
		if err != nil {
			return 0, 0, err
		}
		digest.AddAll(report.Deltas)
	}
	return digest.Sum(), digest.Count(), nil
}

func runReplay(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail("invalid timeline ID %q", args[0])
	}

	cfg, err := loadSessionConfig()
	if err != nil {
		fail("%v", err)
	}
	mgrCfg, err := cfg.ToSession()
	if err != nil {
		fail("%v", err)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	timeline, err := store.LoadTimeline(id)
	if err != nil {
		fail("%v", err)
	}

	ticks := sim.Tick(flagReplayTicks)
	if ticks == 0 {
		ticks = 2 * timeline.Duration()
	}

	sum, count, err := replayDigest(timeline, mgrCfg, ticks)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Replayed timeline #%d\n", id)
	fmt.Printf("  actor:       %s\n", timeline.Actor())
	fmt.Printf("  ticks run:   %d\n", ticks)
	fmt.Printf("  deltas:      %d\n", count)
	fmt.Printf("  digest:      %016x\n", sum)
}
