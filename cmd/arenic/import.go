package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/sim"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a timeline file into the store",
	Long: `Import a timeline exported by 'arenic export'. The embedded
fingerprint is recomputed during decode; a corrupted file is rejected
before it reaches the store.

Examples:
  arenic import ./patrol.arnt`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fail("%v", err)
	}

	timeline, err := sim.Decode(data)
	if err != nil {
		fail("%v", err)
	}

	cfg, err := loadSessionConfig()
	if err != nil {
		fail("%v", err)
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	id, err := store.SaveTimeline(timeline)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Imported %s as timeline #%d\n", args[0], id)
	fmt.Printf("  actor:       %s\n", timeline.Actor())
	fmt.Printf("  duration:    %d ticks\n", timeline.Duration())
	fmt.Printf("  fingerprint: %016x\n", timeline.Fingerprint())
}
