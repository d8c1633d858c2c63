package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Verify a timeline's integrity and replay determinism",
	Long: `Check a stored timeline two ways: decode it and recompute its
fingerprint against the stored one, then replay it twice in fresh
sessions and compare the delta digests. Both replays must be
bit-identical or the engine has a determinism bug.

Examples:
  arenic verify 3`,
	Args: cobra.ExactArgs(1),
	Run:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) {
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

	// LoadTimeline recomputes the fingerprint during decode; reaching
	// this point means the stored bytes are intact.
	timeline, err := store.LoadTimeline(id)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("fingerprint  %016x  ok\n", timeline.Fingerprint())

	ticks := 2 * timeline.Duration()
	first, _, err := replayDigest(timeline, mgrCfg, ticks)
	if err != nil {
		fail("first replay: %v", err)
	}
	second, _, err := replayDigest(timeline, mgrCfg, ticks)
	if err != nil {
		fail("second replay: %v", err)
	}

	if first != second {
		fail("replay digests diverge: %016x vs %016x", first, second)
	}
	fmt.Printf("determinism  %016x  ok (%d ticks, replayed twice)\n", first, ticks)

	if timeline.Duration() == 0 {
		fail("timeline has zero duration")
	}
	for i, c := range timeline.Commands() {
		if c.Tick >= timeline.Duration() {
			fail("command %d stamped at tick %d beyond duration %d", i, c.Tick, timeline.Duration())
		}
	}
	fmt.Printf("commands     %d within %d ticks  ok\n", len(timeline.Commands()), timeline.Duration())
}
