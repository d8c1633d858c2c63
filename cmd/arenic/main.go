// arenic is a deterministic input replay engine for tick-based arena
// simulations.
//
// Usage:
//
//	arenic list              - List stored timelines and input scripts
//	arenic simulate <script> - Record a scripted run into a timeline
//	arenic replay <id>       - Replay a stored timeline headlessly
//	arenic verify <id>       - Verify a timeline's integrity and determinism
//	arenic watch             - Watch and steer a live session in the terminal
//	arenic serve             - Start SSH server for remote sessions
//	arenic export <id>       - Export a timeline to a file
//	arenic import <file>     - Import a timeline file into the store
//
// Global flags:
//
//	--fps <rate>      - Override the simulation tick rate
//	--db <path>       - Set database path (default: ~/.arenic/timelines.db)
//	--config <path>   - Path to a session config YAML
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/config"
)

var (
	// Global flags
	flagFPS    int
	flagDBPath string
	flagConfig string
	flagPreset string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arenic",
	Short: "Arenic - deterministic input replay for arena simulations",
	Long: `Arenic records player input as timestamped command streams and
replays them as ghosts that reproduce the original run tick for tick.

Available commands:
  list     - Show stored timelines and built-in input scripts
  simulate - Record a scripted run into a sealed timeline
  replay   - Replay a stored timeline headlessly and print its digest
  verify   - Check a timeline's integrity and replay determinism
  watch    - Watch and steer a live session in the terminal
  serve    - Start SSH server for remote sessions
  export   - Write a stored timeline to a portable file
  import   - Load a timeline file into the store

Examples:
  arenic list
  arenic simulate patrol
  arenic replay 3 --ticks 240
  arenic verify 3
  arenic watch
  arenic serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate override (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to timeline database (default: ~/.arenic/timelines.db)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to session config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Session preset: standard, sprint, marathon")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// loadSessionConfig loads the config file and applies the global flag
// overrides.
func loadSessionConfig() (config.SessionConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagPreset != "" {
		config.ApplyPreset(&cfg, config.Preset(flagPreset))
	}
	if flagFPS > 0 {
		cfg.Clock.TickRate = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
