package main

import (
	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/platform/tui"
	"github.com/matthewharwood/arenic-replay/internal/session"
	"github.com/matthewharwood/arenic-replay/internal/sim"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch and steer a live session in the terminal",
	Long: `Start an interactive session in the terminal.

Controls:
  Arrows/WASD - Move the live actor
  1-8         - Cast an ability
  Tab         - Switch focused arena
  Space/P     - Pause / resume the whole session
  R           - Start a recording cycle in the focused arena
  G           - Spawn the latest stored timeline as a ghost
  Q/Ctrl+C    - Quit

Examples:
  arenic watch
  arenic watch --preset sprint
  arenic watch --config ./my-session.yaml`,
	Run: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) {
	cfg, err := loadSessionConfig()
	if err != nil {
		fail("%v", err)
	}
	mgrCfg, err := cfg.ToSession()
	if err != nil {
		fail("%v", err)
	}
	mgr, err := session.New(mgrCfg)
	if err != nil {
		fail("%v", err)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		// The session still works without persistence
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	policy, _ := playback.ParseEndPolicy(cfg.Cycle.EndPolicy)
	runErr := tui.Run(mgr, store, tui.Options{
		FrameRate:  cfg.Clock.TickRate,
		CycleTicks: mgrCfg.CycleTicks,
		EndPolicy:  policy,
		Spawn:      sim.GridPoint{X: mgrCfg.Bounds.W / 2, Y: mgrCfg.Bounds.H / 2},
	})
	if runErr != nil {
		fail("%v", runErr)
	}
}
